package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/dateutil"
	"github.com/Sh16coder/Trackitstudy/internal/stats"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

var validate = validator.New()

// SessionRequest is a study-session submission. Validation rejects
// non-positive durations and malformed dates before anything reaches
// the aggregation engine, which assumes valid input.
type SessionRequest struct {
	Subject       string  `json:"subject" validate:"required"`
	DurationHours float64 `json:"duration_hours" validate:"required,gt=0"`
	Date          string  `json:"date" validate:"required"`
}

func ValidateSessionRequest(body *SessionRequest) error {
	if err := validate.Struct(body); err != nil {
		return err
	}
	day, err := dateutil.ParseDay(body.Date)
	if err != nil {
		return err
	}
	body.Date = day
	body.Subject = strings.TrimSpace(body.Subject)
	if body.Subject == "" {
		return validate.Var(body.Subject, "required")
	}
	return nil
}

// CreateSession persists a new session owned by the authenticated user.
// The owner is never taken from client input.
func CreateSession(ctx context.Context, sessionRepo storage.SessionRepository, user *internal.User, body *SessionRequest) (*internal.StudySession, error) {
	sess := &internal.StudySession{
		ID:            uuid.NewString(),
		OwnerID:       user.ID,
		Subject:       body.Subject,
		DurationHours: body.DurationHours,
		Date:          body.Date,
		CreatedAt:     time.Now(),
	}
	if err := sessionRepo.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// LoadDashboard fetches the owner's current sessions and folds them
// into the dashboard view. Every call recomputes from the full list;
// there is no incremental delta path.
func LoadDashboard(ctx context.Context, sessionRepo storage.SessionRepository, ownerID, referenceDay string) (stats.AggregateView, error) {
	sessions, err := sessionRepo.ListSessions(ctx, ownerID, storage.DefaultListLimit)
	if err != nil {
		return stats.AggregateView{}, err
	}
	return stats.BuildView(sessions, referenceDay), nil
}
