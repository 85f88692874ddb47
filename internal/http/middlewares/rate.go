package middlewares

import (
	"fmt"
	"math"
	"net/http"

	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/observability/logger"
	"github.com/dropDatabas3/personavault/internal/rate"
)

// KeyFunc deriva la key del limiter a partir del request.
type KeyFunc func(r *http.Request) string

// KeyByIP limita por IP del cliente.
func KeyByIP(r *http.Request) string { return ClientIP(r) }

// KeyByUser limita por usuario autenticado, con fallback a IP para anónimos.
func KeyByUser(r *http.Request) string {
	if uid := GetUserID(r.Context()); uid != "" {
		return "u:" + uid
	}
	return "ip:" + ClientIP(r)
}

// WithRateLimit aplica el limiter a las requests. Si el backend del limiter
// falla (ej: Redis caído) deja pasar: disponibilidad sobre throttling.
func WithRateLimit(limiter rate.Limiter, key KeyFunc) Middleware {
	if key == nil {
		key = KeyByIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), key(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				secs := int(math.Ceil(res.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
				helpers.WriteError(w, helpers.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
