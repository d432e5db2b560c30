package api

import (
	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/cache"
	"github.com/Sh16coder/Trackitstudy/internal/live"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

type App interface {
	Logger() internal.Logger
	SessionRepo() storage.SessionRepository
	ProfileRepo() storage.ProfileRepository
	ViewCache() *cache.ViewCache
	Hub() *live.Hub
}

type app struct {
	logger      internal.Logger
	sessionRepo storage.SessionRepository
	profileRepo storage.ProfileRepository
	viewCache   *cache.ViewCache
	hub         *live.Hub
}

// NewApp bundles the collaborators the handler factories need.
// viewCache and hub may be nil; both degrade gracefully.
func NewApp(logger internal.Logger, sessionRepo storage.SessionRepository, profileRepo storage.ProfileRepository, viewCache *cache.ViewCache, hub *live.Hub) App {
	return &app{
		logger:      logger,
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		viewCache:   viewCache,
		hub:         hub,
	}
}

func (a *app) Logger() internal.Logger                { return a.logger }
func (a *app) SessionRepo() storage.SessionRepository { return a.sessionRepo }
func (a *app) ProfileRepo() storage.ProfileRepository { return a.profileRepo }
func (a *app) ViewCache() *cache.ViewCache            { return a.viewCache }
func (a *app) Hub() *live.Hub                         { return a.hub }
