package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-catalog-orders/internal/config"
	"github.com/ariefcatur/go-catalog-orders/internal/eventlog"
	kafkax "github.com/ariefcatur/go-catalog-orders/internal/kafka"
	"github.com/ariefcatur/go-catalog-orders/internal/logger"
	"github.com/ariefcatur/go-catalog-orders/internal/redisx"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.Logging, cfg.ServiceName+"-eventlog")
	if !cfg.Kafka.Enabled {
		log.Fatal().Msg("kafka is disabled, nothing to consume")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &eventlog.Handler{Log: log}
	if cfg.Redis.Enabled {
		rdb := redisx.New(cfg.Redis.Addr)
		defer rdb.Close()
		h.Dedup = &redisx.Dedup{RDB: rdb, Consumer: cfg.Kafka.Group}
	}

	cons := kafkax.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group, cfg.Kafka.Topic, cfg.Kafka.Workers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().
			Str("group", cfg.Kafka.Group).
			Str("topic", cfg.Kafka.Topic).
			Int("workers", cfg.Kafka.Workers).
			Msg("event log consumer started")
		if err := cons.Start(ctx, h.Handle); err != nil {
			log.Error().Err(err).Msg("consumer exit")
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumer")
	cancel()
	<-done
}
