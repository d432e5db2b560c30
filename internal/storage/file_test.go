package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Sh16coder/Trackitstudy/internal"
)

func setupFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	dir := t.TempDir()
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	s, err := NewFileStorage(filepath.Join(dir, "sessions.json"), filepath.Join(dir, "profiles.json"), logger)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndListSessions(t *testing.T) {
	s := setupFileStorage(t)
	ctx := context.Background()

	sessions := []*internal.StudySession{
		{ID: "s1", OwnerID: "u1", Subject: "math", DurationHours: 2, Date: "2023-06-01", CreatedAt: time.Now()},
		{ID: "s2", OwnerID: "u1", Subject: "science", DurationHours: 1.5, Date: "2023-06-02", CreatedAt: time.Now()},
		{ID: "s3", OwnerID: "u2", Subject: "history", DurationHours: 1, Date: "2023-06-02", CreatedAt: time.Now()},
	}
	for _, sess := range sessions {
		assert.NoError(t, s.SaveSession(ctx, sess))
	}

	got, err := s.ListSessions(ctx, "u1", 0)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	// Newest date first.
	assert.Equal(t, "s2", got[0].ID)
	assert.Equal(t, "s1", got[1].ID)

	got, err = s.ListSessions(ctx, "u1", 1)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "s2", got[0].ID)

	got, err = s.ListSessions(ctx, "nobody", 0)
	assert.NoError(t, err)
	assert.Empty(t, got)
}

func TestListSessions_SameDayOrdering(t *testing.T) {
	s := setupFileStorage(t)
	ctx := context.Background()
	base := time.Now()

	assert.NoError(t, s.SaveSession(ctx, &internal.StudySession{ID: "old", OwnerID: "u1", Subject: "math", DurationHours: 1, Date: "2023-06-02", CreatedAt: base}))
	assert.NoError(t, s.SaveSession(ctx, &internal.StudySession{ID: "new", OwnerID: "u1", Subject: "math", DurationHours: 1, Date: "2023-06-02", CreatedAt: base.Add(time.Minute)}))

	got, err := s.ListSessions(ctx, "u1", 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, []string{got[0].ID, got[1].ID})
}

func TestMergeProfile_NeverClobbersShareCode(t *testing.T) {
	s := setupFileStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.MergeProfile(ctx, "u1", internal.ProfilePatch{ShareCode: "AAA111"}))
	assert.NoError(t, s.MergeProfile(ctx, "u1", internal.ProfilePatch{ShareCode: "BBB222"}))

	p, err := s.GetProfile(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "AAA111", p.ShareCode)

	// Display name merges without touching the code.
	assert.NoError(t, s.MergeProfile(ctx, "u1", internal.ProfilePatch{DisplayName: "Alex"}))
	p, err = s.GetProfile(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, "Alex", p.DisplayName)
	assert.Equal(t, "AAA111", p.ShareCode)
}

func TestFindProfileByShareCode(t *testing.T) {
	s := setupFileStorage(t)
	ctx := context.Background()

	assert.NoError(t, s.MergeProfile(ctx, "u1", internal.ProfilePatch{ShareCode: "ABC123", DisplayName: "Alex"}))

	p, err := s.FindProfileByShareCode(ctx, "ABC123")
	assert.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)

	_, err = s.FindProfileByShareCode(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetProfile(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStorage_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	sessionsFile := filepath.Join(dir, "sessions.json")
	profilesFile := filepath.Join(dir, "profiles.json")
	logger := internal.NewZapLogger(zap.NewNop().Sugar())
	ctx := context.Background()

	s, err := NewFileStorage(sessionsFile, profilesFile, logger)
	assert.NoError(t, err)
	assert.NoError(t, s.SaveSession(ctx, &internal.StudySession{ID: "s1", OwnerID: "u1", Subject: "math", DurationHours: 2, Date: "2023-06-01", CreatedAt: time.Now()}))
	assert.NoError(t, s.MergeProfile(ctx, "u1", internal.ProfilePatch{ShareCode: "ABC123"}))
	assert.NoError(t, s.Close())

	info, err := os.Stat(sessionsFile)
	assert.NoError(t, err)
	assert.True(t, info.Size() > 0)

	reopened, err := NewFileStorage(sessionsFile, profilesFile, logger)
	assert.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.ListSessions(ctx, "u1", 0)
	assert.NoError(t, err)
	assert.Len(t, got, 1)

	p, err := reopened.FindProfileByShareCode(ctx, "ABC123")
	assert.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
}
