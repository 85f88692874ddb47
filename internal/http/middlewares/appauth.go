package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/metrics"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
)

// WithAppAuth autentica apps por X-App-ID + X-API-Key y deja la app en el
// contexto. Toda falla responde el mismo 401 genérico.
func WithAppAuth(authn *apikey.Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			appID := r.Header.Get("X-App-ID")
			key := r.Header.Get("X-API-Key")

			app, err := authn.Authenticate(r.Context(), appID, key)
			if err != nil {
				metrics.AppAuthFailures.Inc()
				helpers.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(setApp(r.Context(), app)))
		})
	}
}
