package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TemirB/order-finalizer/internal/config"
	"github.com/TemirB/order-finalizer/internal/domain"
	"github.com/TemirB/order-finalizer/internal/pkg/retry"
)

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Connect opens a pool with a zap query tracer and retries the first ping
// according to retryPolicy.
func Connect(ctx context.Context, dsn string, maxConns int32, retryPolicy config.Retry, logger *zap.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newZapTracer(logger.Named("pgx")),
		LogLevel: tracelog.LogLevelWarn,
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	err = retry.Do(ctx, retryPolicy, func(ctx context.Context, attempt int) error {
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("postgres not ready", zap.Int("attempt", attempt+1), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const selectOrder = `
	SELECT o.order_id, u.user_id, u.username, u.email,
	       COALESCE(o.first_name, ''), COALESCE(o.last_name, ''),
	       COALESCE(o.street_address, ''), COALESCE(o.city, ''), COALESCE(o.state, ''),
	       COALESCE(o.country, ''), COALESCE(o.postal_code, ''),
	       o.total_amount::text, o.status, o.created_at
	FROM orders o
	JOIN users u ON u.user_id = o.user_id
	WHERE o.order_id = $1`

func (r *Repo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var (
		o      domain.Order
		amount string
		status string
	)
	err := r.pool.QueryRow(ctx, selectOrder, id).Scan(
		&o.ID, &o.Customer.ID, &o.Customer.Username, &o.Customer.Email,
		&o.FirstName, &o.LastName,
		&o.StreetAddress, &o.City, &o.State,
		&o.Country, &o.PostalCode,
		&amount, &status, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.Status = domain.Status(status)
	if o.TotalAmount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("order %s: total_amount %q: %w", id, amount, err)
	}
	if o.Items, err = r.items(ctx, id); err != nil {
		return nil, fmt.Errorf("order %s: items: %w", id, err)
	}
	return &o, nil
}

func (r *Repo) items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_item_id, product_id, product_name, quantity, unit_price::text
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var (
			it    domain.OrderItem
			price string
		)
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("unit_price %q: %w", price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Create inserts a new order with its items in one transaction and fills in
// the generated item ids and created_at. An unknown customer maps to
// domain.ErrInvalidOrder.
func (r *Repo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (order_id, user_id, total_amount, status)
		VALUES ($1, $2, $3::numeric, $4)
		RETURNING created_at
	`, o.ID, o.Customer.ID, o.TotalAmount.String(), string(o.Status)).Scan(&o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
			return fmt.Errorf("%w: unknown user %d", domain.ErrInvalidOrder, o.Customer.ID)
		}
		return err
	}

	if len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5::numeric)
				RETURNING order_item_id
			`, o.ID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.String())
		}
		br := tx.SendBatch(ctx, batch)
		for i := range o.Items {
			if err := br.QueryRow().Scan(&o.Items[i].ID); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert item %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const fkViolation = "23503"

// UpdateShipping writes the shipping block and moves the order to
// domain.StatusUpdating.
func (r *Repo) UpdateShipping(ctx context.Context, id string, info domain.ShippingInfo) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET first_name = $2, last_name = $3, street_address = $4,
		    city = $5, state = $6, country = $7, postal_code = $8,
		    status = $9
		WHERE order_id = $1
	`, id, info.FirstName, info.LastName, info.StreetAddress,
		info.City, info.State, info.Country, info.PostalCode,
		string(domain.StatusUpdating))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Save persists the order's mutable state. Only the status changes after
// checkout, so that is the only column written.
func (r *Repo) Save(ctx context.Context, o *domain.Order) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE order_id = $1`, o.ID, string(o.Status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) RecentOrderIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id FROM orders
		ORDER BY created_at DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
