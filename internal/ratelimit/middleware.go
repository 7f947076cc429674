package ratelimit

import (
	"context"
	"log"
	"math"
	"net"
	"net/http"
	"socialconnect-server/internal/metrics"
	"socialconnect-server/internal/util"
	"strconv"
	"time"
)

const msgTooManyRequests = "Too many requests. Please try again later."

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// PerIP : ограничивает запросы с одного адреса в рамках scope.
// Ошибка Redis не блокирует запрос, только логируется
func PerIP(limiter Limiter, scope string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)

			allowed, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("[RateLimit] ошибка лимитера для %s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				metrics.RateLimited.WithLabelValues(scope).Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				util.HandleError(w, msgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP : RemoteAddr уже переписан middleware.RealIP, если запрос пришёл через прокси
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
