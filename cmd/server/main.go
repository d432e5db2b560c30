package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/api"
	"github.com/Sh16coder/Trackitstudy/internal/auth"
	"github.com/Sh16coder/Trackitstudy/internal/cache"
	"github.com/Sh16coder/Trackitstudy/internal/config"
	"github.com/Sh16coder/Trackitstudy/internal/live"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	sessionRepo, profileRepo, closer, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer closer()

	var viewCache *cache.ViewCache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		viewCache, err = cache.NewViewCache(cfg.RedisAddr, logger)
		if err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer viewCache.Close()
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
	}

	hub := live.NewHub(sessionRepo, redisClient, logger)
	app := api.NewApp(logger, sessionRepo, profileRepo, viewCache, hub)

	var provider auth.Provider
	switch cfg.AuthMode {
	case "remote":
		provider = auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger)
	case "jwt":
		provider = auth.NewJWTAuthProvider(cfg.JWTSecret, logger)
	default:
		provider = auth.NewLocalAuthProvider(cfg.LocalToken, logger)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.Routes(r, app, auth.Middleware(provider))

	logger.Infof("Server running on :%s (storage=%s, auth=%s)", cfg.Port, cfg.StorageBackend, cfg.AuthMode)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}

func buildRepositories(cfg *config.Config, logger internal.Logger) (storage.SessionRepository, storage.ProfileRepository, func(), error) {
	switch cfg.StorageBackend {
	case "postgres":
		pg, err := storage.NewPostgresStorage(cfg.PostgresDSN, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return pg, pg, pg.Close, nil
	case "mongo":
		mg, err := storage.NewMongoStorage(cfg.MongoURI, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return mg, mg, func() { _ = mg.Close() }, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.FileSessions), 0755); err != nil {
			return nil, nil, nil, err
		}
		fs, err := storage.NewFileStorage(cfg.FileSessions, cfg.FileProfiles, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return fs, fs, func() { _ = fs.Close() }, nil
	}
}
