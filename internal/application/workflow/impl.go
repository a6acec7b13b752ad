package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/dispatcher"
	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	"github.com/fcastillo/hybrid-notary/internal/domain/event"
	domainwf "github.com/fcastillo/hybrid-notary/internal/domain/workflow"
	"github.com/fcastillo/hybrid-notary/internal/metrics"
	"github.com/fcastillo/hybrid-notary/internal/voucher"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	sessions   port.SessionRepository
	history    port.SessionEventRepository
	txManager  port.TransactionManager
	certifiers port.CertifierDirectory
	tokens     port.CallTokenIssuer
	logger     *zap.Logger

	dispatcher dispatcher.Dispatcher
	metrics    *metrics.Metrics

	locks *sessionLocks
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting lifecycle events
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) {
		e.dispatcher = d
	}
}

// WithMetrics sets the prometheus collectors the engine reports into
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *engineImpl) {
		e.metrics = m
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	sessions port.SessionRepository,
	history port.SessionEventRepository,
	txManager port.TransactionManager,
	certifiers port.CertifierDirectory,
	tokens port.CallTokenIssuer,
	logger *zap.Logger,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		sessions:   sessions,
		history:    history,
		txManager:  txManager,
		certifiers: certifiers,
		tokens:     tokens,
		logger:     logger,
		locks:      newSessionLocks(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// AcceptSession assigns a certifier to a queued session and issues the call token
func (e *engineImpl) AcceptSession(ctx context.Context, sessionID, certifierID int64) (*entity.Session, error) {
	certifier, err := e.certifiers.Lookup(ctx, certifierID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve certifier: %w", err)
	}
	if certifier == nil {
		return nil, fmt.Errorf("%w: certifier %d", entity.ErrNotFound, certifierID)
	}

	token, err := e.tokens.Issue(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue call token: %w", err)
	}

	return e.transition(ctx, sessionID, domainwf.TriggerAccept, entity.ActorCertifier, func(s *entity.Session) {
		id := certifier.ID
		s.CertifierID = &id
		s.CertifierName = certifier.Name
		s.CallToken = token
	})
}

// SendDocumentForReview overwrites the document content and moves the session
// to client approval
func (e *engineImpl) SendDocumentForReview(ctx context.Context, sessionID int64, content string) (*entity.Session, error) {
	return e.transition(ctx, sessionID, domainwf.TriggerSendDocument, entity.ActorCertifier, func(s *entity.Session) {
		s.DocumentContent = content
	})
}

// ApproveDocument records the client's approval of the document
func (e *engineImpl) ApproveDocument(ctx context.Context, sessionID int64) (*entity.Session, error) {
	return e.transition(ctx, sessionID, domainwf.TriggerApproveDocument, entity.ActorClient, nil)
}

// SubmitClientPackage stores the client's signature payload
func (e *engineImpl) SubmitClientPackage(ctx context.Context, sessionID int64, signature string) (*entity.Session, error) {
	return e.transition(ctx, sessionID, domainwf.TriggerSubmitPackage, entity.ActorClient, func(s *entity.Session) {
		s.ClientSignature = signature
	})
}

// FinalizeSession completes the session and emits the client notification
// side effect
func (e *engineImpl) FinalizeSession(ctx context.Context, sessionID int64) (*entity.Session, error) {
	session, err := e.transition(ctx, sessionID, domainwf.TriggerFinalize, entity.ActorCertifier, func(s *entity.Session) {
		s.FinalDocumentURL = voucher.FinalDocumentURL(s.VoucherCode)
	})
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SessionsCompleted.Inc()
	}

	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, event.NewEvent(
			event.TypeSessionCompleted,
			session.ID,
			session.VoucherCode,
			map[string]interface{}{
				"client_email":       session.ClientEmail,
				"final_document_url": session.FinalDocumentURL,
			},
		))
	}

	return session, nil
}

// FailSession force-transitions a non-terminal session to failed
func (e *engineImpl) FailSession(ctx context.Context, sessionID int64, reason string) (*entity.Session, error) {
	session, err := e.transitionWithDetail(ctx, sessionID, domainwf.TriggerFail, entity.ActorSystem, reason, nil)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.SessionsFailed.Inc()
	}

	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, event.NewEvent(
			event.TypeSessionFailed,
			session.ID,
			session.VoucherCode,
			map[string]interface{}{"reason": reason},
		))
	}

	return session, nil
}

// transition executes the read-validate-mutate-write sequence for a trigger
// under the session's lock
func (e *engineImpl) transition(ctx context.Context, sessionID int64, trigger domainwf.Trigger, actor string, mutate func(*entity.Session)) (*entity.Session, error) {
	return e.transitionWithDetail(ctx, sessionID, trigger, actor, "", mutate)
}

func (e *engineImpl) transitionWithDetail(ctx context.Context, sessionID int64, trigger domainwf.Trigger, actor, detail string, mutate func(*entity.Session)) (*entity.Session, error) {
	lock := e.locks.acquire(sessionID)
	defer lock.Unlock()

	session, err := e.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: session %d", entity.ErrNotFound, sessionID)
	}

	machine := BuildSessionStateMachine(domainwf.State(session.Status))
	previousState := machine.State()

	if err := machine.Fire(trigger); err != nil {
		if e.metrics != nil {
			e.metrics.RejectedTransitions.WithLabelValues(session.Status, trigger.String()).Inc()
		}
		e.logger.Warn("Transition rejected",
			zap.Int64("session_id", sessionID),
			zap.String("status", session.Status),
			zap.String("trigger", trigger.String()))
		return nil, err
	}

	if mutate != nil {
		mutate(session)
	}
	session.Status = machine.State().String()
	session.UpdatedAt = time.Now()

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.sessions.Update(txCtx, session, previousState.String()); err != nil {
			return err
		}

		return e.history.Create(txCtx, &entity.SessionEvent{
			SessionID:      sessionID,
			Actor:          actor,
			PreviousStatus: previousState.String(),
			NewStatus:      session.Status,
			Trigger:        trigger.String(),
			Detail:         detail,
			Timestamp:      time.Now(),
		})
	})
	if err != nil {
		// A lost compare-and-set means another writer moved the session
		// between our read and write; report it as an ordering violation.
		if errors.Is(err, entity.ErrStatusConflict) {
			if e.metrics != nil {
				e.metrics.RejectedTransitions.WithLabelValues(previousState.String(), trigger.String()).Inc()
			}
			return nil, fmt.Errorf("%w: session %d moved past %s", domainwf.ErrInvalidTransition, sessionID, previousState)
		}
		return nil, fmt.Errorf("failed to persist transition: %w", err)
	}

	if e.metrics != nil {
		e.metrics.Transitions.WithLabelValues(previousState.String(), session.Status, trigger.String()).Inc()
	}

	e.logger.Info("Session transitioned",
		zap.Int64("session_id", sessionID),
		zap.String("from", previousState.String()),
		zap.String("to", session.Status),
		zap.String("trigger", trigger.String()),
		zap.String("actor", actor))

	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, event.NewEvent(
			event.TypeStatusChanged,
			sessionID,
			session.VoucherCode,
			map[string]interface{}{
				"previous_status": previousState.String(),
				"new_status":      session.Status,
				"trigger":         trigger.String(),
			},
		))
	}

	return session, nil
}
