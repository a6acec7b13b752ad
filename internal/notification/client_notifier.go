// Package notification implements the notify-client side effect emitted when
// a session completes. Rendering and delivering the email is an external
// collaborator; this package is the boundary where the request leaves the
// core.
package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/dispatcher"
	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/event"
)

// LogNotifier implements port.ClientNotifier by recording the delivery
// request. A mail integration replaces it in deployments that own delivery.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that records delivery requests
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyFinalDocument records the request to send the certified document
func (n *LogNotifier) NotifyFinalDocument(_ context.Context, email, voucherCode, documentURL string) error {
	n.logger.Info("Client notification requested",
		zap.String("email", email),
		zap.String("voucher_code", voucherCode),
		zap.String("final_document_url", documentURL))
	return nil
}

var _ port.ClientNotifier = (*LogNotifier)(nil)

// CompletionHandler returns a dispatcher handler that forwards
// session.completed events to the notifier
func CompletionHandler(notifier port.ClientNotifier) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		return notifier.NotifyFinalDocument(ctx,
			evt.GetPayloadString("client_email"),
			evt.VoucherCode,
			evt.GetPayloadString("final_document_url"))
	}
}
