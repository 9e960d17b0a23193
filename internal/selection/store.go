// Package selection owns the short-lived per-user state between an ambiguous club
// search and the user's choice.
package selection

import (
	"context"

	"github.com/hunterjsb/clubscout/internal/club"
)

// Store keeps at most one pending selection per user
type Store interface {
	Get(ctx context.Context, user string) (club.PendingSelection, bool, error)
	Set(ctx context.Context, sel club.PendingSelection) error
	Delete(ctx context.Context, user string) error
}
