package dispatcher

import (
	"context"

	"github.com/fcastillo/hybrid-notary/internal/domain/event"
)

// Handler processes a lifecycle event
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo pairs a handler with a name for registration and debugging
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
