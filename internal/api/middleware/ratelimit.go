package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/salonflow/scheduling-service/internal/api/handlers"
)

// RateLimiter ограничивает частоту запросов по клиенту: по X-User-ID,
// если он есть, иначе по IP
type RateLimiter struct {
	limiters sync.Map
	rps      float64
	burst    int
}

// NewRateLimiter создает ограничитель с заданными rps и burst
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{rps: rps, burst: burst}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

// Middleware возвращает 429, когда клиент превышает лимит
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-User-ID")
		if key == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			key = host
		}

		if !l.getLimiter(key).Allow() {
			handlers.RespondError(w, http.StatusTooManyRequests, "слишком много запросов")
			return
		}

		next.ServeHTTP(w, r)
	})
}
