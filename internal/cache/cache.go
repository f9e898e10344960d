package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/TemirB/order-finalizer/internal/domain"
)

//go:generate mockgen -source cache.go -destination=cache_mock_test.go -package=cache

type repo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	RecentOrderIDs(ctx context.Context, limit int) ([]string, error)
}

// Cache is a bounded LRU of orders keyed by order id. Values are stored by
// copy so callers cannot mutate cached entries.
type Cache struct {
	size int
	lru  *lru.Cache[string, domain.Order]
}

func New(size int) (*Cache, error) {
	c, err := lru.New[string, domain.Order](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		size: size,
		lru:  c,
	}, nil
}

// Warm loads up to size of the newest orders. It returns how many were
// cached; lookup failures are skipped.
func (c *Cache) Warm(ctx context.Context, repo repo) (int, error) {
	ids, err := repo.RecentOrderIDs(ctx, c.size)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if o, err := repo.GetByID(ctx, id); err == nil {
			c.Set(o)
			n++
		}
	}
	return n, nil
}

func (c *Cache) Get(id string) (*domain.Order, bool) {
	order, ok := c.lru.Get(id)
	if !ok {
		return nil, false
	}
	return &order, true
}

func (c *Cache) Set(order *domain.Order) {
	c.lru.Add(order.ID, *order)
}

func (c *Cache) Len() int { return c.lru.Len() }
