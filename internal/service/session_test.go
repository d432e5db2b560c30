package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sh16coder/Trackitstudy/internal"
)

func TestValidateSessionRequest(t *testing.T) {
	valid := &SessionRequest{Subject: "math", DurationHours: 2, Date: "2023-06-01"}
	assert.NoError(t, ValidateSessionRequest(valid))

	cases := []struct {
		name string
		req  SessionRequest
	}{
		{"zero duration", SessionRequest{Subject: "math", DurationHours: 0, Date: "2023-06-01"}},
		{"negative duration", SessionRequest{Subject: "math", DurationHours: -1, Date: "2023-06-01"}},
		{"missing subject", SessionRequest{DurationHours: 1, Date: "2023-06-01"}},
		{"blank subject", SessionRequest{Subject: "   ", DurationHours: 1, Date: "2023-06-01"}},
		{"missing date", SessionRequest{Subject: "math", DurationHours: 1}},
		{"malformed date", SessionRequest{Subject: "math", DurationHours: 1, Date: "01/06/2023"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			assert.Error(t, ValidateSessionRequest(&req))
		})
	}
}

func TestCreateSession_OwnerFromIdentity(t *testing.T) {
	repo, ctx := setupRepos(t)

	req := &SessionRequest{Subject: "math", DurationHours: 2, Date: "2023-06-01"}
	assert.NoError(t, ValidateSessionRequest(req))

	sess, err := CreateSession(ctx, repo, &internal.User{ID: "u1"}, req)
	assert.NoError(t, err)
	assert.Equal(t, "u1", sess.OwnerID)
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.CreatedAt.IsZero())

	stored, err := repo.ListSessions(ctx, "u1", 0)
	assert.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, sess.ID, stored[0].ID)
}

func TestLoadDashboard(t *testing.T) {
	repo, ctx := setupRepos(t)
	user := &internal.User{ID: "u1"}

	for _, req := range []SessionRequest{
		{Subject: "math", DurationHours: 2, Date: "2023-06-01"},
		{Subject: "science", DurationHours: 1.5, Date: "2023-06-02"},
		{Subject: "history", DurationHours: 1, Date: "2023-06-02"},
	} {
		r := req
		_, err := CreateSession(ctx, repo, user, &r)
		assert.NoError(t, err)
	}

	view, err := LoadDashboard(ctx, repo, "u1", "2023-06-02")
	assert.NoError(t, err)
	assert.InDelta(t, 2.5, view.TodayHours, 1e-9)
	assert.InDelta(t, 4.5, view.WeeklyHours, 1e-9)
	assert.InDelta(t, 4.5, view.TotalHours, 1e-9)
	assert.Len(t, view.DailySeries, 7)

	// Another user's dashboard stays empty.
	empty, err := LoadDashboard(ctx, repo, "u2", "2023-06-02")
	assert.NoError(t, err)
	assert.Zero(t, empty.TotalHours)
}
