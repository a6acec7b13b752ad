package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/application/workflow"
	domainwf "github.com/fcastillo/hybrid-notary/internal/domain/workflow"
)

// ExpirySweeper force-fails sessions that have sat in a non-terminal status
// longer than the abandonment timeout. It goes through the engine's ordinary
// fail transition, so history and events are recorded like any other
// transition.
type ExpirySweeper struct {
	sessions port.SessionRepository
	engine   workflow.Engine
	logger   *zap.Logger

	timeout       time.Duration
	sweepInterval time.Duration
	batchSize     int

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewExpirySweeper creates a new sweeper. timeout is the abandonment
// threshold; sessions untouched for longer are failed.
func NewExpirySweeper(
	sessions port.SessionRepository,
	engine workflow.Engine,
	timeout time.Duration,
	sweepInterval time.Duration,
	batchSize int,
	logger *zap.Logger,
) *ExpirySweeper {
	return &ExpirySweeper{
		sessions:      sessions,
		engine:        engine,
		logger:        logger,
		timeout:       timeout,
		sweepInterval: sweepInterval,
		batchSize:     batchSize,
	}
}

// Start starts the sweep loop
func (w *ExpirySweeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("expiry sweeper is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true

	w.logger.Info("ExpirySweeper started",
		zap.Duration("timeout", w.timeout),
		zap.Duration("sweep_interval", w.sweepInterval),
		zap.Int("batch_size", w.batchSize))

	go w.sweepLoop()

	return nil
}

// Stop stops the sweep loop
func (w *ExpirySweeper) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	w.isRunning = false
	if w.cancel != nil {
		w.cancel()
	}

	w.logger.Info("ExpirySweeper stopped")
}

func (w *ExpirySweeper) sweepLoop() {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(w.ctx)
		}
	}
}

// Sweep fails every session stale past the timeout. Exported so tests and
// admin tooling can run a single pass.
func (w *ExpirySweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-w.timeout)

	stale, err := w.sessions.ListStale(ctx, cutoff, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list stale sessions", zap.Error(err))
		return
	}

	for _, session := range stale {
		reason := fmt.Sprintf("abandoned: no activity since %s", session.UpdatedAt.Format(time.RFC3339))
		if _, err := w.engine.FailSession(ctx, session.ID, reason); err != nil {
			// Another actor may have advanced the session between the
			// listing and the fail; that is not an error worth surfacing.
			if errors.Is(err, domainwf.ErrInvalidTransition) {
				continue
			}
			w.logger.Error("Failed to expire session",
				zap.Int64("session_id", session.ID),
				zap.Error(err))
			continue
		}

		w.logger.Info("Session expired",
			zap.Int64("session_id", session.ID),
			zap.String("voucher_code", session.VoucherCode))
	}
}
