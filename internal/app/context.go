package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/auth"
	"github.com/cutmatch/cutmatch-api/internal/cache"
	"github.com/cutmatch/cutmatch-api/internal/config"
	"github.com/cutmatch/cutmatch-api/internal/upload"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Tokens     *auth.TokenManager
	Uploads    upload.Store
}

// New creates a new AppContext. The token manager is derived from cfg.Auth.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, uploads upload.Store) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tokens:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Uploads:    uploads,
	}
}
