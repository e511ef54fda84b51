package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client key.
type clientLimiter struct {
	rps      float64
	burst    int
	limiters sync.Map // string -> *rate.Limiter
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &clientLimiter{rps: rps, burst: burst}
}

func (l *clientLimiter) Allow(key string) bool {
	limiter, ok := l.limiters.Load(key)
	if !ok {
		limiter, _ = l.limiters.LoadOrStore(key, rate.NewLimiter(rate.Limit(l.rps), l.burst))
	}
	return limiter.(*rate.Limiter).Allow()
}
