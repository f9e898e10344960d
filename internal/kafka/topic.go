package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/config"
	"github.com/TemirB/order-finalizer/internal/pkg/retry"
)

const (
	topicDialTimeout = 10 * time.Second
	topicReadyWait   = 10 * time.Second
	topicPollEvery   = 500 * time.Millisecond
)

// EnsureTopic makes sure cfg.Topic exists with at least cfg.Partitions
// partitions. Broker or controller failures are retried per retryPolicy; an
// invalid cfg fails at once.
func EnsureTopic(ctx context.Context, cfg config.Kafka, retryPolicy config.Retry, log *zap.Logger) error {
	if len(cfg.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return errors.New("empty topic")
	}
	want := topicConfig(cfg)
	log = log.With(zap.String("topic", want.Topic))

	err := retry.Do(ctx, retryPolicy, func(ctx context.Context, attempt int) error {
		err := ensureTopicOnce(ctx, cfg.Brokers, want, log)
		if err != nil {
			log.Warn("kafka topic not ready", zap.Int("attempt", attempt+1), zap.Error(err))
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("ensure topic %s: %w", want.Topic, err)
	}
	return nil
}

func topicConfig(cfg config.Kafka) kafkago.TopicConfig {
	return kafkago.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     max(cfg.Partitions, 1),
		ReplicationFactor: max(cfg.Replication, 1),
	}
}

func ensureTopicOnce(ctx context.Context, brokers []string, want kafkago.TopicConfig, log *zap.Logger) error {
	dialer := &kafkago.Dialer{Timeout: topicDialTimeout}

	conn, err := dialAny(ctx, dialer, brokers)
	if err != nil {
		return err
	}
	defer conn.Close()

	if n := partitionCount(conn, want.Topic); n > 0 {
		log.Info("kafka topic exists", zap.Int("partitions", n))
		return nil
	}

	if err := createOnController(ctx, dialer, conn, want); err != nil {
		return err
	}
	log.Info("kafka topic created",
		zap.Int("partitions", want.NumPartitions),
		zap.Int("replication", want.ReplicationFactor),
	)
	return awaitPartitions(ctx, conn, want)
}

// dialAny returns a connection to the first broker that answers.
func dialAny(ctx context.Context, dialer *kafkago.Dialer, brokers []string) (*kafkago.Conn, error) {
	var errs []error
	for _, b := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", b)
		if err == nil {
			return conn, nil
		}
		errs = append(errs, fmt.Errorf("dial broker %s: %w", b, err))
	}
	return nil, errors.Join(errs...)
}

func partitionCount(conn *kafkago.Conn, topic string) int {
	parts, err := conn.ReadPartitions(topic)
	if err != nil {
		return 0
	}
	return len(parts)
}

// createOnController sends CreateTopics to the cluster controller. A topic
// created concurrently by another instance counts as success.
func createOnController(ctx context.Context, dialer *kafkago.Dialer, conn *kafkago.Conn, want kafkago.TopicConfig) error {
	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))

	ctrl, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", addr, err)
	}
	defer ctrl.Close()

	err = ctrl.CreateTopics(want)
	if err != nil && !errors.Is(err, kafkago.TopicAlreadyExists) {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

// awaitPartitions polls metadata until the new topic reports its partitions.
func awaitPartitions(ctx context.Context, conn *kafkago.Conn, want kafkago.TopicConfig) error {
	ctx, cancel := context.WithTimeout(ctx, topicReadyWait)
	defer cancel()

	tick := time.NewTicker(topicPollEvery)
	defer tick.Stop()

	for {
		if partitionCount(conn, want.Topic) >= want.NumPartitions {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("topic not visible after creation: %w", ctx.Err())
		case <-tick.C:
		}
	}
}
