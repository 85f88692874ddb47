package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/personavault/internal/auth"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
)

// WithSession parsea el Bearer token si viene y deja los claims en el
// contexto. Un token inválido corta con 401; sin token el request sigue como
// anónimo (las rutas públicas resuelven visibilidad igual).
func WithSession(issuer *auth.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := issuer.Verify(raw)
			if err != nil {
				helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("invalid or expired session token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(setSession(r.Context(), claims)))
		})
	}
}

// RequireUser corta con 401 si no hay sesión en el contexto. Encadenar
// después de WithSession.
func RequireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r.Context()) == nil {
				helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail("authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
