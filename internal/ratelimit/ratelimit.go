package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket per caller key: a client IP, a chat caller, or
// "ingest" for the ingestion queue.
type Limiter interface {
	Wait(ctx context.Context, key string) error
	Allow(key string) bool
}

type KeyedLimiter struct {
	limiters  map[string]*rate.Limiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

var _ Limiter = (*KeyedLimiter)(nil)

func New(perSecond float64, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}
	return &KeyedLimiter{limiters: make(map[string]*rate.Limiter), rateLimit: rate.Limit(perSecond), burstRate: burst}
}

// Unlimited never blocks.
func Unlimited() *KeyedLimiter {
	return New(float64(rate.Inf), 1)
}

func (k *KeyedLimiter) get(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()
	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.rateLimit, k.burstRate)
		k.limiters[key] = limiter
	}
	return limiter
}

// Wait blocks until key may make one more upstream call or ctx is done.
func (k *KeyedLimiter) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

func (k *KeyedLimiter) Allow(key string) bool {
	return k.get(key).Allow()
}

//TODO: move the buckets to redis once more than one api instance runs
