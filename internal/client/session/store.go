// Package session owns the single live client session: the bearer
// credential and the identity it was issued for, persisted across restarts.
package session

import (
	"context"
	"errors"

	"github.com/okazarin/teller/internal/client/models"
)

// ErrStorage marks durable-storage failures. Match with errors.Is.
var ErrStorage = errors.New("session storage error")

// Store holds the current session. Save and Clear are the only mutators and
// are never invoked by two in-flight operations at once; the UI serializes
// them (single-writer discipline), so implementations do not lock around
// multi-statement writes beyond a database transaction.
type Store interface {
	// Save persists credential and identity together and guarantees
	// durability before returning.
	Save(ctx context.Context, s models.Session) error

	// Load returns the last saved session, or nil if none exists. Stored
	// data that fails to parse is cleared and reported as absent, so a
	// corrupt store heals on the next read.
	Load(ctx context.Context) (*models.Session, error)

	// Clear removes credential and identity together. Clearing an empty
	// store is not an error.
	Clear(ctx context.Context) error
}
