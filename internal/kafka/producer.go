package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/TemirB/order-finalizer/internal/domain"
)

const HeaderCommandID = "command_id"

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes finalize commands keyed by order id, so commands for the
// same order land on one partition in publish order.
type Producer struct {
	writer Writer
}

func NewProducer(w Writer) *Producer { return &Producer{writer: w} }

func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireAll,
	}
}

// Enqueue writes one command per id and returns the command ids in the same
// order.
func (p *Producer) Enqueue(ctx context.Context, ids ...string) ([]string, error) {
	msgs := make([]kafkago.Message, 0, len(ids))
	cmdIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("empty order id")
		}
		value, err := json.Marshal(domain.FinalizeRequest{OrderID: domain.OrderID(id)})
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", id, err)
		}
		cmdID := uuid.NewString()
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(id),
			Value:   value,
			Headers: []kafkago.Header{{Key: HeaderCommandID, Value: []byte(cmdID)}},
		})
		cmdIDs = append(cmdIDs, cmdID)
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return nil, fmt.Errorf("write %d commands: %w", len(msgs), err)
	}
	return cmdIDs, nil
}

func (p *Producer) Close() error { return p.writer.Close() }
