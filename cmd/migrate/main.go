package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/ariefcatur/go-catalog-orders/internal/config"
	"github.com/ariefcatur/go-catalog-orders/internal/logger"
	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/rs/zerolog"
)

func main() {
	seed := flag.Bool("seed", false, "insert sample categories, products and an order into an empty database")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.Logging, cfg.ServiceName+"-migrate")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := postgres.Migrate(ctx, cfg.Database.DSN, log); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if !*seed {
		return
	}

	db, err := postgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if err := postgres.Seed(ctx, db, log); err != nil {
		log.Error().Err(err).Msg("seed")
		db.Close()
		os.Exit(1)
	}
}
