// Package roster provides the static certifier directory loaded from
// configuration.
package roster

import (
	"context"

	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
)

// StaticDirectory implements port.CertifierDirectory over a fixed roster
type StaticDirectory struct {
	byID map[int64]entity.Certifier
}

// NewStaticDirectory creates a directory from the configured roster entries
func NewStaticDirectory(certifiers []entity.Certifier) *StaticDirectory {
	byID := make(map[int64]entity.Certifier, len(certifiers))
	for _, c := range certifiers {
		byID[c.ID] = c
	}
	return &StaticDirectory{byID: byID}
}

// Lookup returns the roster entry for an id, or (nil, nil) if unknown
func (d *StaticDirectory) Lookup(_ context.Context, certifierID int64) (*entity.Certifier, error) {
	c, ok := d.byID[certifierID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

var _ port.CertifierDirectory = (*StaticDirectory)(nil)
