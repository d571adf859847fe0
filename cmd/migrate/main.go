package main

import (
	"context"
	"time"

	"mollywear-backend/config"
	"mollywear-backend/internal/migrate"
	"mollywear-backend/internal/repository/postgres"
	"mollywear-backend/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPgxPool(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Migrations failed")
	}

	log.Info().Msg("Migrations applied")
}
