package auth

import (
	"context"
	"errors"

	"github.com/Sh16coder/Trackitstudy/internal"
)

// ErrUnauthorized is returned for any token that does not resolve to a
// user.
var ErrUnauthorized = errors.New("auth: invalid token")

// Provider turns a bearer token into a stable user identity. The rest
// of the service treats the resulting ID as an opaque string.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*internal.User, error)
}
