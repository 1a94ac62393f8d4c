package main

import (
	"context"

	"github.com/copasapp/copas-api/internal/app"
	"github.com/copasapp/copas-api/internal/cache"
	"github.com/copasapp/copas-api/internal/config"
	"github.com/copasapp/copas-api/internal/db"
	"github.com/copasapp/copas-api/internal/logger"
	"github.com/copasapp/copas-api/internal/photo"
	"github.com/copasapp/copas-api/internal/server"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	// Init photo store (creates the uploads tree)
	photos, err := photo.NewStore(cfg)
	if err != nil {
		log.Error("failed to init photo store", "err", err)
		return
	}

	appCtx := app.New(cfg, database, redisCache, photos, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	if err := server.New(appCtx).Start(); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
