// Command enqueue publishes finalize commands for the given order ids to the
// queue consumed by order-finalizer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/config"
	"github.com/TemirB/order-finalizer/internal/kafka"
	"github.com/TemirB/order-finalizer/internal/logger"
)

func main() {
	_ = godotenv.Load("env/.env")

	brokers := flag.String("brokers", envOr("KAFKA_BROKERS", "localhost:9092"), "comma-separated kafka brokers")
	topic := flag.String("topic", envOr("KAFKA_TOPIC", "order-finalize"), "finalize command topic")
	timeout := flag.Duration("timeout", 10*time.Second, "publish timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: enqueue [-brokers host:port,...] [-topic name] <orderId>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	zl, err := logger.New(config.Log{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	producer := kafka.NewProducer(kafka.NewWriter(splitBrokers(*brokers), *topic))
	defer func() {
		if err := producer.Close(); err != nil {
			zl.Warn("close writer", zap.Error(err))
		}
	}()

	cmdIDs, err := producer.Enqueue(ctx, flag.Args()...)
	if err != nil {
		zl.Error("enqueue failed", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
	for i, id := range flag.Args() {
		zl.Info("finalize command queued",
			zap.String("order_id", id),
			zap.String("command_id", cmdIDs[i]),
			zap.String("topic", *topic),
		)
	}
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
