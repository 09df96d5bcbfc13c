package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	"github.com/ariefcatur/go-catalog-orders/internal/config"
	"github.com/ariefcatur/go-catalog-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-catalog-orders/internal/kafka"
	"github.com/ariefcatur/go-catalog-orders/internal/logger"
	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/ariefcatur/go-catalog-orders/internal/redisx"
	"github.com/ariefcatur/go-catalog-orders/internal/storefront"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("config")
	}
	log := logger.New(cfg.Logging, cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	checks := map[string]httpx.Pinger{"postgres": db}

	// Redis
	var idem httpx.IdempotencyStore
	if cfg.Redis.Enabled {
		rdb := redisx.New(cfg.Redis.Addr)
		defer rdb.Close()
		idem = &redisx.Idempotency{RDB: rdb}
		checks["redis"] = httpx.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	// Kafka producer
	var events storefront.Publisher = storefront.NopPublisher{}
	var prod *kafkax.Producer
	if cfg.Kafka.Enabled {
		prod = kafkax.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, 1024, log)
		prod.Start(ctx)
		events = prod
	}

	svc := &storefront.Service{
		Categories: &catalog.CategoryRepo{DB: db},
		Products:   &catalog.ProductRepo{DB: db},
		Orders:     &catalog.OrderRepo{DB: db},
		Items:      &catalog.OrderItemRepo{DB: db},
		Events:     events,
		Log:        log,
		Producer:   cfg.ServiceName,
	}

	router := httpx.NewRouter(log, cfg.HTTP.RequestTimeout, checks)
	(&httpx.CategoriesHandler{Svc: svc}).Register(router)
	(&httpx.ProductsHandler{Svc: svc}).Register(router)
	(&httpx.OrdersHandler{Svc: svc, Idem: idem}).Register(router)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if prod != nil {
		prod.Close() // flush pending events before the writer goes away
		cancel()
		prod.WaitClosed()
	}
}
