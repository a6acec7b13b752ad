// Package call issues the opaque tokens clients use to join the video call.
// The video transport itself is an external collaborator; only the token
// format is owned here.
package call

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
)

// TokenIssuer implements port.CallTokenIssuer with random tokens
type TokenIssuer struct{}

// NewTokenIssuer creates a new token issuer
func NewTokenIssuer() *TokenIssuer {
	return &TokenIssuer{}
}

// Issue returns an opaque call token bound to the session id
func (i *TokenIssuer) Issue(_ context.Context, sessionID int64) (string, error) {
	return fmt.Sprintf("call-%d-%s", sessionID, uuid.NewString()), nil
}

var _ port.CallTokenIssuer = (*TokenIssuer)(nil)
