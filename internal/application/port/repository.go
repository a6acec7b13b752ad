package port

import (
	"context"
	"time"

	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// TransactionRepository defines persistence operations for Transaction
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id int64) (*entity.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// SessionRepository defines persistence operations for Session
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	// GetByID returns (nil, nil) when the id is unknown
	GetByID(ctx context.Context, id int64) (*entity.Session, error)

	// ListByStatus returns sessions in insertion order
	ListByStatus(ctx context.Context, status string) ([]*entity.Session, error)

	// ListStale returns non-terminal sessions whose last update is older
	// than the cutoff, oldest first
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*entity.Session, error)

	// Update persists the session compare-and-set: the write only applies
	// while the stored status still equals expectStatus, otherwise
	// entity.ErrStatusConflict is returned and nothing changes.
	Update(ctx context.Context, session *entity.Session, expectStatus string) error
}

// SessionEventRepository defines persistence operations for SessionEvent
type SessionEventRepository interface {
	Create(ctx context.Context, evt *entity.SessionEvent) error
	ListBySessionID(ctx context.Context, sessionID int64) ([]*entity.SessionEvent, error)
}

// TransactionManager handles store transactions. Repository calls made with
// the context it passes to fn observe and apply changes atomically.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
