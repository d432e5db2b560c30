package storage

import (
	"context"
	"errors"

	"github.com/Sh16coder/Trackitstudy/internal"
)

// ErrNotFound is returned when a profile or share-code lookup matches
// nothing. Backends wrap their driver errors into it so callers can use
// errors.Is regardless of the configured backend.
var ErrNotFound = errors.New("storage: not found")

// SessionRepository stores append-only study sessions. ListSessions
// returns the owner's sessions newest date first, capped at limit
// (limit <= 0 means the default of 100).
type SessionRepository interface {
	SaveSession(ctx context.Context, session *internal.StudySession) error
	ListSessions(ctx context.Context, ownerID string, limit int) ([]internal.StudySession, error)
}

// ProfileRepository stores user profiles. MergeProfile only sets the
// patch fields that are present and never replaces an existing share
// code, so concurrent ensure-code calls converge on one stored value.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error)
	MergeProfile(ctx context.Context, userID string, patch internal.ProfilePatch) error
	FindProfileByShareCode(ctx context.Context, code string) (*internal.UserProfile, error)
}

// DefaultListLimit caps session queries, matching the dashboard's
// retention horizon.
const DefaultListLimit = 100
