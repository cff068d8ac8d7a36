package main

import (
	"context"

	"khet-backend/internal/app"
	"khet-backend/internal/config"
	"khet-backend/internal/database"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}

	fiberApp, db, rdb, err := app.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("get DB handle")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Postgres connection failed")
		}
		log.Info().Msg("Postgres connected")

		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
		if err := database.EnsureViewPermissions(db); err != nil {
			log.Fatal().Err(err).Msg("seed view permissions")
		}
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
