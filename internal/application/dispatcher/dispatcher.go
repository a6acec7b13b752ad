package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/fcastillo/hybrid-notary/internal/domain/event"
)

// Dispatcher routes lifecycle events to registered handlers. The transition
// operations publish through it; consumers like the completion notifier (or a
// future push channel for the polling clients) subscribe without the engine
// knowing about them.
type Dispatcher interface {
	// Subscribe registers a handler for an event type
	Subscribe(eventType event.Type, handler Handler)

	// SubscribeNamed registers a handler with a name for debugging
	SubscribeNamed(eventType event.Type, name string, handler Handler)

	// Dispatch sends event to all registered handlers synchronously.
	// Returns first error encountered (handlers run in order)
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync sends event to handlers asynchronously.
	// Does not wait for handlers to complete
	DispatchAsync(ctx context.Context, evt *event.Event)

	// Close shuts down the dispatcher and waits for async handlers
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// eventDispatcher is the concrete implementation of Dispatcher
type eventDispatcher struct {
	mu       sync.RWMutex
	handlers map[event.Type][]HandlerInfo
	logger   Logger

	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]HandlerInfo),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Subscribe registers a handler for an event type with an auto-generated name
func (d *eventDispatcher) Subscribe(eventType event.Type, handler Handler) {
	d.mu.RLock()
	name := fmt.Sprintf("handler-%d", len(d.handlers[eventType]))
	d.mu.RUnlock()
	d.SubscribeNamed(eventType, name, handler)
}

// SubscribeNamed registers a handler with a specific name for debugging
func (d *eventDispatcher) SubscribeNamed(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], HandlerInfo{
		Name:      name,
		EventType: eventType,
		Handler:   handler,
	})

	if d.logger != nil {
		d.logger.Info("Handler registered",
			"event_type", eventType,
			"handler_name", name,
		)
	}
}

// Dispatch sends event to all registered handlers synchronously
func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	if d.closed.Load() {
		return fmt.Errorf("dispatcher is closed")
	}

	d.mu.RLock()
	handlers := append([]HandlerInfo(nil), d.handlers[evt.Type]...)
	d.mu.RUnlock()

	for _, h := range handlers {
		if err := h.Handler(ctx, evt); err != nil {
			if d.logger != nil {
				d.logger.Error("Handler failed",
					"event_type", evt.Type,
					"handler_name", h.Name,
					"error", err,
				)
			}
			return fmt.Errorf("handler %s failed: %w", h.Name, err)
		}
	}

	return nil
}

// DispatchAsync sends event to handlers asynchronously
func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	if d.closed.Load() {
		return
	}

	d.mu.RLock()
	handlers := append([]HandlerInfo(nil), d.handlers[evt.Type]...)
	d.mu.RUnlock()

	for _, h := range handlers {
		d.wg.Add(1)
		go func(h HandlerInfo) {
			defer d.wg.Done()
			if err := h.Handler(ctx, evt); err != nil && d.logger != nil {
				d.logger.Error("Async handler failed",
					"event_type", evt.Type,
					"handler_name", h.Name,
					"error", err,
				)
			}
		}(h)
	}
}

// Close shuts down the dispatcher and waits for async handlers
func (d *eventDispatcher) Close() error {
	d.closed.Store(true)
	d.wg.Wait()
	return nil
}
