package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/cache"
	"github.com/Sh16coder/Trackitstudy/internal/sharecode"
	"github.com/Sh16coder/Trackitstudy/internal/stats"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

// ErrCodeNotFound is returned when a share code resolves to no profile.
var ErrCodeNotFound = errors.New("service: share code not found")

// EnsureShareCode returns the user's share code, generating one on
// first use. Idempotent: an existing code is returned unchanged, and
// the merge write never overwrites a code stored by a concurrent call,
// so both callers converge on the same value.
func EnsureShareCode(ctx context.Context, profileRepo storage.ProfileRepository, userID string) (string, error) {
	profile, err := profileRepo.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return "", err
	}
	if profile != nil && profile.ShareCode != "" {
		return profile.ShareCode, nil
	}

	code, err := sharecode.New()
	if err != nil {
		return "", err
	}
	if err := profileRepo.MergeProfile(ctx, userID, internal.ProfilePatch{ShareCode: code}); err != nil {
		return "", err
	}

	// Re-read: a concurrent call may have won the conditional write.
	profile, err = profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile.ShareCode == "" {
		return "", fmt.Errorf("service: share code write did not stick for user %s", userID)
	}
	return profile.ShareCode, nil
}

// ResolveShareCode maps a code, case-insensitively, to the owning
// profile. If the store ever held duplicate codes the backend returns
// its first match; resolution is documented as best-effort.
func ResolveShareCode(ctx context.Context, profileRepo storage.ProfileRepository, code string) (*internal.UserProfile, error) {
	normalized := sharecode.Normalize(code)
	if normalized == "" {
		return nil, ErrCodeNotFound
	}
	profile, err := profileRepo.FindProfileByShareCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}
	return profile, nil
}

// LoadSharedView resolves a code and runs the owner's sessions through
// the same aggregation pipeline, read-only. Profile and session reads
// are two sequential queries with no transaction between them; the
// small staleness window is accepted. A short-TTL cache sits in front
// when configured; cache failures fall through to the store.
func LoadSharedView(ctx context.Context, profileRepo storage.ProfileRepository, sessionRepo storage.SessionRepository, viewCache *cache.ViewCache, code, referenceDay string) (*stats.SharedView, error) {
	normalized := sharecode.Normalize(code)
	if view, ok := viewCache.GetSharedView(ctx, normalized, referenceDay); ok {
		return view, nil
	}

	profile, err := ResolveShareCode(ctx, profileRepo, normalized)
	if err != nil {
		return nil, err
	}

	sessions, err := sessionRepo.ListSessions(ctx, profile.UserID, storage.DefaultListLimit)
	if err != nil {
		return nil, err
	}

	displayName := profile.DisplayName
	if displayName == "" {
		displayName = "Anonymous"
	}
	view := stats.BuildSharedView(displayName, sessions, referenceDay)
	viewCache.SetSharedView(ctx, normalized, referenceDay, &view)
	return &view, nil
}

// UpdateDisplayName sets the profile display name shown on shared views.
func UpdateDisplayName(ctx context.Context, profileRepo storage.ProfileRepository, userID, displayName string) error {
	return profileRepo.MergeProfile(ctx, userID, internal.ProfilePatch{DisplayName: displayName})
}
