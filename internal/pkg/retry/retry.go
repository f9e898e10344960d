package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/TemirB/order-finalizer/internal/config"
)

// Backoff is the wait schedule between attempts: Base doubled per failed
// attempt, spread by JitterFactor and capped at Max.
type Backoff struct {
	policy config.Retry
	rand   func() float64
}

func NewBackoff(policy config.Retry) *Backoff {
	return &Backoff{policy: policy, rand: rand.Float64}
}

// Delay is the wait after failed attempt n, counting from zero.
func (b *Backoff) Delay(n int) time.Duration {
	d := float64(b.policy.Base) * math.Pow(2, float64(n))
	if j := b.policy.JitterFactor; j > 0 {
		d *= 1 + j*(2*b.rand()-1)
	}

	limit := time.Duration(math.MaxInt64)
	if b.policy.Max > 0 {
		limit = b.policy.Max
	}
	if d >= float64(limit) {
		return limit
	}
	return time.Duration(d)
}

// Run calls fn until it succeeds, the policy runs out of attempts or ctx is
// done. fn receives the zero-based attempt number. The last error from fn is
// wrapped with the attempt count.
func (b *Backoff) Run(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := max(b.policy.Attempts, 1)

	var err error
	for n := 0; n < attempts; n++ {
		if err = fn(ctx, n); err == nil {
			return nil
		}
		if n == attempts-1 {
			break
		}

		t := time.NewTimer(b.Delay(n))
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w (last error: %w)", ctx.Err(), err)
		case <-t.C:
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}

// Do is NewBackoff(policy).Run(ctx, fn).
func Do(ctx context.Context, policy config.Retry, fn func(ctx context.Context, attempt int) error) error {
	return NewBackoff(policy).Run(ctx, fn)
}
