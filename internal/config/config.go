package config

import (
	"errors"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Port     string

	StorageBackend string // file | postgres | mongo
	PostgresDSN    string
	MongoURI       string
	FileSessions   string
	FileProfiles   string

	RedisAddr string // empty disables the shared-view cache

	AuthMode       string // local | remote | jwt
	LocalToken     string
	AuthServiceURL string
	JWTSecret      string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:            getEnv("APP_ENV", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			Port:           getEnv("PORT", "8088"),
			StorageBackend: getEnv("STORAGE_BACKEND", "file"),
			PostgresDSN:    getEnv("POSTGRES_DSN", ""),
			MongoURI:       getEnv("MONGO_URI", ""),
			FileSessions:   getEnv("SESSIONS_FILE", "data/study_sessions.json"),
			FileProfiles:   getEnv("PROFILES_FILE", "data/profiles.json"),
			RedisAddr:      getEnv("REDIS_ADDR", ""),
			AuthMode:       getEnv("AUTH_MODE", "local"),
			LocalToken:     getEnv("LOCAL_AUTH_TOKEN", "MOCK-TOKEN"),
			AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
			JWTSecret:      getEnv("JWT_SECRET", ""),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "mongo":
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORAGE_BACKEND=mongo")
		}
	case "file":
		if c.FileSessions == "" || c.FileProfiles == "" {
			return errors.New("File storage requires SESSIONS_FILE and PROFILES_FILE to be set")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres, mongo")
	}
	switch c.AuthMode {
	case "local":
	case "remote":
		if c.AuthServiceURL == "" {
			return errors.New("AUTH_SERVICE_URL is required when AUTH_MODE=remote")
		}
	case "jwt":
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return errors.New("AUTH_MODE must be one of: local, remote, jwt")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
