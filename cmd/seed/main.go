package main

import (
	"context"
	"time"

	"prioritytracker/internal/config"
	"prioritytracker/internal/db"
	"prioritytracker/internal/logger"
	"prioritytracker/internal/repository"
	"prioritytracker/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New().Make()
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New().WithLevel(cfg.LogLevel).WithFormat(cfg.LogFormat).Make()
	log.Info().Msg("Starting seed script...")

	gormDB, err := db.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	seeder := seed.New(repository.NewUserRepository(gormDB), repository.NewInitiativeRepository(gormDB), log)
	res, err := seeder.Run(ctx, cfg.Admin)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().
		Bool("admin_created", res.AdminCreated).
		Int("initiatives_created", res.InitiativesCreated).
		Msg("seed completed")
}
