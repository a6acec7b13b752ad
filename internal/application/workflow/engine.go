package workflow

import (
	"context"

	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// Engine applies the certifier- and client-side transitions of the session
// state machine. Every operation validates the session's current status
// against the machine before mutating; a mismatch fails with
// workflow.ErrInvalidTransition and leaves the store untouched.
type Engine interface {
	// AcceptSession assigns a certifier to a queued session and issues the
	// call token. Exactly one certifier can win a given session; a second
	// accept fails because the status is no longer pending_certifier.
	AcceptSession(ctx context.Context, sessionID, certifierID int64) (*entity.Session, error)

	// SendDocumentForReview overwrites the document content and hands it to
	// the client for approval
	SendDocumentForReview(ctx context.Context, sessionID int64, content string) (*entity.Session, error)

	// ApproveDocument records the client's approval of the document
	ApproveDocument(ctx context.Context, sessionID int64) (*entity.Session, error)

	// SubmitClientPackage stores the client's signature payload
	SubmitClientPackage(ctx context.Context, sessionID int64, signature string) (*entity.Session, error)

	// FinalizeSession applies the certifier's FEA signature step: the final
	// document location is derived from the voucher code and the client
	// notification side-effect is emitted
	FinalizeSession(ctx context.Context, sessionID int64) (*entity.Session, error)

	// FailSession force-transitions a non-terminal session to failed
	FailSession(ctx context.Context, sessionID int64, reason string) (*entity.Session, error)
}
