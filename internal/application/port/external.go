package port

import (
	"context"

	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// CertifierDirectory resolves certifier ids against the static roster
type CertifierDirectory interface {
	// Lookup returns (nil, nil) when the id is not on the roster
	Lookup(ctx context.Context, certifierID int64) (*entity.Certifier, error)
}

// ClientNotifier delivers the final-document notification to the client.
// Actual transport (PDF rendering, email) lives outside this service; an
// implementation may hand the request to a mail collaborator or just record
// it.
type ClientNotifier interface {
	NotifyFinalDocument(ctx context.Context, email, voucherCode, documentURL string) error
}

// CallTokenIssuer issues the opaque token the clients use to join the video
// call after a certifier accepts the session
type CallTokenIssuer interface {
	Issue(ctx context.Context, sessionID int64) (string, error)
}
