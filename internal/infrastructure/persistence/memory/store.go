// Package memory provides an in-process implementation of the store ports.
// It backs tests and zero-setup deployments; the sqlite repositories are the
// durable backing.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// Store holds every record behind a single mutex, making each repository
// operation atomic with respect to the others.
type Store struct {
	mu sync.RWMutex

	transactions  map[int64]*entity.Transaction
	sessions      map[int64]*entity.Session
	sessionOrder  []int64
	events        map[int64][]*entity.SessionEvent
	nextTxID      int64
	nextSessionID int64
	nextEventID   int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		transactions: make(map[int64]*entity.Transaction),
		sessions:     make(map[int64]*entity.Session),
		events:       make(map[int64][]*entity.SessionEvent),
	}
}

// Transactions returns the transaction repository view of the store
func (s *Store) Transactions() port.TransactionRepository { return (*transactionRepo)(s) }

// Sessions returns the session repository view of the store
func (s *Store) Sessions() port.SessionRepository { return (*sessionRepo)(s) }

// Events returns the session event repository view of the store
func (s *Store) Events() port.SessionEventRepository { return (*eventRepo)(s) }

// TxManager returns a transaction manager for the store. Atomicity is
// per-operation under the store mutex; multi-write operations additionally
// serialize behind the engine's per-session locks, so fn runs as-is.
func (s *Store) TxManager() port.TransactionManager { return noopTxManager{} }

type noopTxManager struct{}

func (noopTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// transactionRepo implements port.TransactionRepository

type transactionRepo Store

func (r *transactionRepo) Create(_ context.Context, tx *entity.Transaction) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTxID++
	tx.ID = s.nextTxID
	cp := *tx
	s.transactions[tx.ID] = &cp
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id int64) (*entity.Transaction, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	cp := *tx
	return &cp, nil
}

func (r *transactionRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return fmt.Errorf("%w: transaction %d", entity.ErrNotFound, id)
	}
	tx.Status = status
	return nil
}

// sessionRepo implements port.SessionRepository

type sessionRepo Store

func (r *sessionRepo) Create(_ context.Context, session *entity.Session) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSessionID++
	session.ID = s.nextSessionID
	cp := cloneSession(session)
	s.sessions[session.ID] = cp
	s.sessionOrder = append(s.sessionOrder, session.ID)
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, id int64) (*entity.Session, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (r *sessionRepo) ListByStatus(_ context.Context, status string) ([]*entity.Session, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Session
	for _, id := range s.sessionOrder {
		if session := s.sessions[id]; session.Status == status {
			out = append(out, cloneSession(session))
		}
	}
	return out, nil
}

func (r *sessionRepo) ListStale(_ context.Context, cutoff time.Time, limit int) ([]*entity.Session, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Session
	for _, id := range s.sessionOrder {
		session := s.sessions[id]
		if isTerminal(session.Status) || !session.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, cloneSession(session))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *sessionRepo) Update(_ context.Context, session *entity.Session, expectStatus string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return fmt.Errorf("%w: session %d", entity.ErrNotFound, session.ID)
	}
	if stored.Status != expectStatus {
		return fmt.Errorf("%w: session %d is %s, expected %s",
			entity.ErrStatusConflict, session.ID, stored.Status, expectStatus)
	}

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// eventRepo implements port.SessionEventRepository

type eventRepo Store

func (r *eventRepo) Create(_ context.Context, evt *entity.SessionEvent) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	evt.ID = s.nextEventID
	cp := *evt
	s.events[evt.SessionID] = append(s.events[evt.SessionID], &cp)
	return nil
}

func (r *eventRepo) ListBySessionID(_ context.Context, sessionID int64) ([]*entity.SessionEvent, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.events[sessionID]
	out := make([]*entity.SessionEvent, 0, len(events))
	for _, e := range events {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func cloneSession(s *entity.Session) *entity.Session {
	cp := *s
	if s.CertifierID != nil {
		id := *s.CertifierID
		cp.CertifierID = &id
	}
	return &cp
}

func isTerminal(status string) bool {
	return status == entity.StatusCompleted || status == entity.StatusFailed
}
