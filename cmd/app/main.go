package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/application/handler"
	"github.com/TemirB/order-finalizer/internal/application/service"
	"github.com/TemirB/order-finalizer/internal/cache"
	"github.com/TemirB/order-finalizer/internal/config"
	"github.com/TemirB/order-finalizer/internal/database"
	"github.com/TemirB/order-finalizer/internal/database/migrations"
	"github.com/TemirB/order-finalizer/internal/httpapi"
	"github.com/TemirB/order-finalizer/internal/kafka"
	"github.com/TemirB/order-finalizer/internal/logger"
	"github.com/TemirB/order-finalizer/internal/mailer"
	"github.com/TemirB/order-finalizer/internal/observability"
	"github.com/TemirB/order-finalizer/internal/pkg/breaker"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Error("order-finalizer stopped with error", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	zl.Info("order-finalizer stopped")
}

func run(ctx context.Context, cfg config.Config, zl *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DSN(), cfg.Pg.MaxConns, cfg.Retry, zl)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.Pg.Migrate {
		if err := migrations.Apply(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		zl.Info("migrations applied")
	}
	repo := database.New(pool)

	orderCache, err := cache.New(cfg.CacheCap)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if n, err := orderCache.Warm(ctx, repo); err != nil {
		zl.Warn("cache warm-up failed", zap.Error(err))
	} else {
		zl.Info("cache warmed", zap.Int("orders", n), zap.Int("capacity", cfg.CacheCap))
	}

	smtp, err := mailer.New(cfg.Mail)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheus(reg)

	svc := service.NewService(orderCache, repo, smtp, cfg.Mail, zl.Named("service"), metrics)

	srv := httpapi.New(svc, zl.Named("http"), metrics, cfg.CORSOrigins)
	srv.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	var wg sync.WaitGroup
	if cfg.Kafka.Enabled() {
		reader, err := startConsumer(ctx, cfg, svc, metrics, zl, &wg)
		if err != nil {
			return err
		}
		defer func() {
			if err := reader.Close(); err != nil {
				zl.Warn("kafka reader close", zap.Error(err))
			}
		}()
	} else {
		zl.Info("KAFKA_BROKERS not set, queue consumer disabled")
	}

	zl.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
	err = srv.ListenAndServe(ctx, cfg.HTTPAddr, cfg.ShutdownTimeout)
	// the consumer shares ctx, so stop it too when the server fails on its own
	cancel()
	wg.Wait()
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func startConsumer(ctx context.Context, cfg config.Config, svc handler.Service, metrics observability.Metrics, zl *zap.Logger, wg *sync.WaitGroup) (*kafkago.Reader, error) {
	kl := zl.Named("kafka")

	if err := kafka.EnsureTopic(ctx, cfg.Kafka, cfg.Retry, kl); err != nil {
		return nil, err
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		GroupID:  cfg.Kafka.Group,
		Topic:    cfg.Kafka.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	h := handler.NewHandler(svc, breaker.New(cfg.Breaker), kl)
	consumer := kafka.NewConsumer(h, reader, kl, metrics)

	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Start(ctx)
	}()
	return reader, nil
}
