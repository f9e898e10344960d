package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/domain"
)

//go:generate mockgen -source handler.go -destination=handler_mock_test.go -package=handler

var ErrCircuitOpen = errors.New("circuit breaker open")

type Service interface {
	Finalize(ctx context.Context, id string) error
}

type brk interface {
	Allow() error
	Success()
	Failure()
}

type Handler struct {
	service Service
	breaker brk
	logger  *zap.Logger
}

func NewHandler(service Service, breaker brk, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		breaker: breaker,
		logger:  logger,
	}
}

// Handle finalizes the order named in one finalize command. A nil result
// means the message may be committed. Only an open breaker yields an error,
// so the command is held back until finalization is attempted once.
func (h *Handler) Handle(ctx context.Context, message kafkago.Message) error {
	var req domain.FinalizeRequest
	if err := json.Unmarshal(message.Value, &req); err != nil {
		h.logger.Error("bad json format, dropping message",
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return nil
	}
	id := string(req.OrderID)

	if err := h.breaker.Allow(); err != nil {
		h.logger.Warn("circuit breaker is open",
			zap.Error(err),
			zap.String("order_id", id),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}

	err := h.service.Finalize(ctx, id)
	switch {
	case err == nil:
		h.breaker.Success()
		h.logger.Info("order finalized from queue",
			zap.String("order_id", id),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
	case errors.Is(err, domain.ErrOrderNotFound):
		h.breaker.Success()
		h.logger.Warn("order to finalize not found, dropping message",
			zap.String("order_id", id),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
	default:
		h.breaker.Failure()
		h.logger.Error("finalization failed, dropping message",
			zap.String("order_id", id),
			zap.Error(err),
			zap.Int("partition", message.Partition),
			zap.Int64("offset", message.Offset),
		)
	}
	return nil
}
