package llm

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Client with a token bucket applied before every call.
type RateLimited struct {
	inner   Client
	limiter *rate.Limiter
}

func NewRateLimited(inner Client, rps float64) *RateLimited {
	burst := int(math.Max(1, math.Ceil(rps)))
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *RateLimited) Complete(ctx context.Context, req Request) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("llm rate limit: %w", err)
	}
	return c.inner.Complete(ctx, req)
}

func (c *RateLimited) Provider() string { return c.inner.Provider() }

func (c *RateLimited) Model() string { return c.inner.Model() }
