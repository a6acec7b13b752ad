package service

import (
	"context"
	"fmt"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	"github.com/fcastillo/hybrid-notary/internal/domain/workflow"
)

// QueryService is the read-only surface consumed by the polling clients: the
// terminal re-fetching its session and the dashboard re-fetching the queue.
type QueryService interface {
	// GetSession returns the session snapshot for an id
	GetSession(ctx context.Context, sessionID int64) (*entity.Session, error)

	// ListByStatus returns sessions with the given status in insertion
	// order; the dashboard uses it with pending_certifier for its queue
	ListByStatus(ctx context.Context, status string) ([]*entity.Session, error)

	// GetHistory returns the transition history of a session
	GetHistory(ctx context.Context, sessionID int64) ([]*entity.SessionEvent, error)
}

type queryService struct {
	sessions port.SessionRepository
	history  port.SessionEventRepository
}

// NewQueryService creates a new query service
func NewQueryService(sessions port.SessionRepository, history port.SessionEventRepository) QueryService {
	return &queryService{
		sessions: sessions,
		history:  history,
	}
}

// GetSession returns the session snapshot for an id
func (s *queryService) GetSession(ctx context.Context, sessionID int64) (*entity.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %d", entity.ErrNotFound, sessionID)
	}
	return session, nil
}

// ListByStatus returns sessions with the given status in insertion order
func (s *queryService) ListByStatus(ctx context.Context, status string) ([]*entity.Session, error) {
	if !workflow.State(status).IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, status)
	}

	sessions, err := s.sessions.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// GetHistory returns the transition history of a session
func (s *queryService) GetHistory(ctx context.Context, sessionID int64) ([]*entity.SessionEvent, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %d", entity.ErrNotFound, sessionID)
	}

	return s.history.ListBySessionID(ctx, sessionID)
}
