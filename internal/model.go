package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// StudySession is one logged study interval. Sessions are append-only:
// OwnerID is set from the authenticated identity at creation time and
// records are never updated in place.
type StudySession struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Subject       string    `json:"subject"`
	DurationHours float64   `json:"duration_hours"`
	Date          string    `json:"date"` // calendar date, YYYY-MM-DD
	CreatedAt     time.Time `json:"created_at"`
}

// UserProfile holds per-user display data and the share code. At most one
// code per user; once written it is never replaced.
type UserProfile struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name,omitempty"`
	ShareCode   string    `json:"share_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfilePatch carries the fields a merge write may set. Empty fields are
// left untouched; ShareCode is only written if the profile has none.
type ProfilePatch struct {
	DisplayName string
	ShareCode   string
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
