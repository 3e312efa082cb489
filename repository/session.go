package repository

import (
	"context"
	"time"

	"github.com/wallbox/relay/domain"
)

// SessionStore owns the lifecycle of client sessions: it is the single
// source of truth for whether a client is still authenticated at the relay.
// Two concurrent requests for the same session may each resolve the same
// cookie jar, call upstream, and merge their response cookies afterwards;
// the last merge wins on overlapping names. That race is accepted for the
// one-user-per-tab usage pattern and deliberately not serialized away.
type SessionStore interface {
	// Resolve returns the live session for id, bumping its last access, or
	// mints a fresh record when id is empty, unknown, or expired. Reports
	// whether the session was newly created. An expired id is never revived.
	Resolve(ctx context.Context, id string) (*domain.ClientSession, bool, error)

	// MergeCookies folds newly received upstream cookies into the session's
	// jar, overwriting same-named entries and keeping the rest, and bumps
	// last access. A no-op when the session vanished mid-flight.
	MergeCookies(ctx context.Context, id string, cookies map[string]string) error

	// Delete removes the session immediately.
	Delete(ctx context.Context, id string) error

	// Sweep evicts every session idle past the timeout and reports how many
	// were removed. Safe to call concurrently with the other operations.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
