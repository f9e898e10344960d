package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/config"
	"github.com/TemirB/order-finalizer/internal/domain"
	"github.com/TemirB/order-finalizer/internal/observability"
)

//go:generate mockgen -source service.go -destination=service_mock_test.go -package=service

type Cache interface {
	Set(*domain.Order)
	Get(string) (*domain.Order, bool)
}

type Storage interface {
	GetByID(context.Context, string) (*domain.Order, error)
	Save(context.Context, *domain.Order) error
	Create(context.Context, *domain.Order) error
	UpdateShipping(context.Context, string, domain.ShippingInfo) error
}

type Mailer interface {
	Send(context.Context, domain.Message) error
}

type Service struct {
	cache   Cache
	storage Storage
	mailer  Mailer
	mail    config.Mail
	logger  *zap.Logger
	metrics observability.Metrics

	newID func() string
}

func NewService(cache Cache, storage Storage, mailer Mailer, mail config.Mail, logger *zap.Logger, metrics observability.Metrics) *Service {
	return &Service{
		cache:   cache,
		storage: storage,
		mailer:  mailer,
		mail:    mail,
		logger:  logger,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

func (s *Service) Finalize(ctx context.Context, id string) error {
	_, err := s.FinalizeWithStats(ctx, id)
	return err
}

// FinalizeWithStats loads the order, emails the customer, emails the
// developer, then marks the order PAID and saves it. Steps run strictly in
// that order and the first failure ends the call: nothing already sent is
// undone and nothing later is attempted. The returned error wraps one of
// domain.ErrOrderNotFound, domain.ErrNotification or domain.ErrPersistence.
func (s *Service) FinalizeWithStats(ctx context.Context, id string) (FinalizeStats, error) {
	var st FinalizeStats
	start := time.Now()

	if id == "" {
		s.logger.Info("Finalize requested without order id")
		s.metrics.ObserveFinalize(observability.OutcomeNotFound, convertToMs(start))
		return st, domain.ErrOrderNotFound
	}

	t0 := time.Now()
	order, err := s.storage.GetByID(ctx, id)
	st.LookupMs = convertToMs(t0)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("Order to finalize not found", zap.String("order_id", id))
			s.metrics.ObserveFinalize(observability.OutcomeNotFound, convertToMs(start))
			return st, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		s.logger.Error("Can't load order to finalize",
			zap.String("order_id", id),
			zap.Error(err),
		)
		s.metrics.ObserveFinalize(observability.OutcomePersistenceFailed, convertToMs(start))
		return st, fmt.Errorf("%w: load order %s: %w", domain.ErrPersistence, id, err)
	}

	if order.Status == domain.StatusPaid {
		s.logger.Info("Order already paid, finalizing again", zap.String("order_id", id))
	}

	t0 = time.Now()
	err = s.mailer.Send(ctx, domain.CustomerConfirmation(s.mail.Address, order))
	st.CustomerMailMs = convertToMs(t0)
	if err != nil {
		return st, s.notificationFailed(start, id, "customer confirmation", err)
	}

	t0 = time.Now()
	err = s.mailer.Send(ctx, domain.DeveloperNotice(s.mail.Address, s.mail.Developer, order.ID))
	st.DeveloperMailMs = convertToMs(t0)
	if err != nil {
		return st, s.notificationFailed(start, id, "developer notice", err)
	}

	order.MarkPaid()

	t0 = time.Now()
	err = s.storage.Save(ctx, order)
	st.SaveMs = convertToMs(t0)
	if err != nil {
		s.logger.Error("Can't save finalized order",
			zap.String("order_id", id),
			zap.Error(err),
		)
		s.metrics.ObserveFinalize(observability.OutcomePersistenceFailed, convertToMs(start))
		return st, fmt.Errorf("%w: save order %s: %w", domain.ErrPersistence, id, err)
	}

	s.cache.Set(order)

	total := convertToMs(start)
	s.metrics.ObserveFinalize(observability.OutcomeOK, total)
	s.logger.Info("Order finalized",
		zap.String("order_id", id),
		zap.Float64("lookup_ms", st.LookupMs),
		zap.Float64("customer_mail_ms", st.CustomerMailMs),
		zap.Float64("developer_mail_ms", st.DeveloperMailMs),
		zap.Float64("save_ms", st.SaveMs),
		zap.Float64("total_ms", total),
	)
	return st, nil
}

func (s *Service) notificationFailed(start time.Time, id, what string, err error) error {
	s.logger.Error("Can't send "+what,
		zap.String("order_id", id),
		zap.Error(err),
	)
	s.metrics.ObserveFinalize(observability.OutcomeNotificationFailed, convertToMs(start))
	return fmt.Errorf("%w: %s for order %s: %w", domain.ErrNotification, what, id, err)
}

// CreateOrder stores a new Processing order with the requested items. The
// returned error wraps domain.ErrInvalidOrder or domain.ErrPersistence.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	order, err := domain.NewPreliminaryOrder(s.newID(), req)
	if err != nil {
		s.logger.Info("Rejected new order", zap.Int64("user_id", req.CustomerID), zap.Error(err))
		return nil, err
	}

	if err := s.storage.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrInvalidOrder) {
			s.logger.Info("Rejected new order", zap.Int64("user_id", req.CustomerID), zap.Error(err))
			return nil, err
		}
		s.logger.Error("Can't create order",
			zap.String("order_id", order.ID),
			zap.Int64("user_id", req.CustomerID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: create order %s: %w", domain.ErrPersistence, order.ID, err)
	}

	s.logger.Info("Preliminary order created",
		zap.String("order_id", order.ID),
		zap.Int64("user_id", req.CustomerID),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// UpdateShipping records the customer's shipping details and moves the order
// to Updating order. The cached copy is replaced on success.
func (s *Service) UpdateShipping(ctx context.Context, id string, info domain.ShippingInfo) (*domain.Order, error) {
	if id == "" {
		return nil, domain.ErrOrderNotFound
	}

	order, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		s.logger.Error("Can't load order to update", zap.String("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: load order %s: %w", domain.ErrPersistence, id, err)
	}

	if err := s.storage.UpdateShipping(ctx, id, info); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		s.logger.Error("Can't update order", zap.String("order_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: update order %s: %w", domain.ErrPersistence, id, err)
	}

	order.ApplyShipping(info)
	s.cache.Set(order)

	s.logger.Info("Order updated with shipping info",
		zap.String("order_id", id),
		zap.String("status", string(order.Status)),
	)
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, _, err := s.GetByIDWithStats(ctx, id)
	return o, err
}

func (s *Service) GetByIDWithStats(ctx context.Context, id string) (*domain.Order, LookupStats, error) {
	var st LookupStats

	tCacheStart := time.Now()
	if order, ok := s.cache.Get(id); ok {
		st.Source = SourceCache
		st.CacheMs = convertToMs(tCacheStart)
		s.metrics.IncCacheHit()
		s.metrics.ObserveLookup(string(st.Source), st.CacheMs, 0)

		s.logger.Debug("Order fetched from cache",
			zap.String("order_id", id),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return order, st, nil
	}

	s.metrics.IncCacheMiss()
	st.CacheMs = convertToMs(tCacheStart)

	tDbStart := time.Now()
	order, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, st, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
		}
		s.logger.Error("Can't fetch order",
			zap.String("order_id", id),
			zap.Error(err),
			zap.Float64("cache_ms", st.CacheMs),
		)
		return nil, st, fmt.Errorf("%w: load order %s: %w", domain.ErrPersistence, id, err)
	}

	st.Source = SourceDB
	st.DBMs = convertToMs(tDbStart)

	s.cache.Set(order)

	s.metrics.ObserveLookup(string(st.Source), st.CacheMs, st.DBMs)
	s.logger.Debug("Order fetched from DB",
		zap.String("order_id", id),
		zap.Float64("cache_ms", st.CacheMs),
		zap.Float64("db_ms", st.DBMs),
	)
	return order, st, nil
}
