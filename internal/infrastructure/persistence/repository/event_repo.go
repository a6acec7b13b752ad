package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// SessionEventRepository implements port.SessionEventRepository on SQLite
type SessionEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionEventRepository creates a new session event repository
func NewSessionEventRepository(db *sql.DB, logger *zap.Logger) port.SessionEventRepository {
	return &SessionEventRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new history record
func (r *SessionEventRepository) Create(ctx context.Context, evt *entity.SessionEvent) error {
	query := `
		INSERT INTO session_events (session_id, actor, previous_status, new_status, trigger_name, detail, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := executorFrom(ctx, r.db).ExecContext(ctx, query,
		evt.SessionID,
		evt.Actor,
		evt.PreviousStatus,
		evt.NewStatus,
		evt.Trigger,
		evt.Detail,
		evt.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create session event", zap.Error(err))
		return fmt.Errorf("failed to create session event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	evt.ID = id
	return nil
}

// ListBySessionID retrieves the history of a session in transition order
func (r *SessionEventRepository) ListBySessionID(ctx context.Context, sessionID int64) ([]*entity.SessionEvent, error) {
	query := `
		SELECT id, session_id, actor, previous_status, new_status, trigger_name, detail, timestamp
		FROM session_events
		WHERE session_id = ?
		ORDER BY id ASC
	`

	rows, err := executorFrom(ctx, r.db).QueryContext(ctx, query, sessionID)
	if err != nil {
		r.logger.Error("Failed to list session events", zap.Int64("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("failed to list session events: %w", err)
	}
	defer rows.Close()

	var events []*entity.SessionEvent
	for rows.Next() {
		var evt entity.SessionEvent
		err := rows.Scan(
			&evt.ID,
			&evt.SessionID,
			&evt.Actor,
			&evt.PreviousStatus,
			&evt.NewStatus,
			&evt.Trigger,
			&evt.Detail,
			&evt.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session event: %w", err)
		}
		events = append(events, &evt)
	}

	return events, rows.Err()
}

var _ port.SessionEventRepository = (*SessionEventRepository)(nil)
