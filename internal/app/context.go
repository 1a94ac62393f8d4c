package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/copasapp/copas-api/internal/cache"
	"github.com/copasapp/copas-api/internal/config"
	"github.com/copasapp/copas-api/internal/photo"
)

// AppContext holds shared dependencies (DB, Redis, photo store, logger).
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Photos     *photo.Store
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, photos *photo.Store, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Photos:     photos,
		Logger:     logger,
	}
}
