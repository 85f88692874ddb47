// Package router arma el árbol de rutas de la API v1.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/personavault/internal/auth"
	"github.com/dropDatabas3/personavault/internal/http/handlers"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	mw "github.com/dropDatabas3/personavault/internal/http/middlewares"
	"github.com/dropDatabas3/personavault/internal/metrics"
	"github.com/dropDatabas3/personavault/internal/rate"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
)

// Deps son las dependencias del router.
type Deps struct {
	Sessions *auth.Issuer
	AppAuth  *apikey.Authenticator

	Auth            *handlers.AuthHandler
	Identities      *handlers.IdentityHandler
	Apps            *handlers.AppHandler
	ConsentRequests *handlers.ConsentRequestHandler
	Consents        *handlers.ConsentHandler
	AppData         *handlers.AppDataHandler
	Health          *handlers.HealthHandler

	// Limiters opcionales por endpoint sensible. Nil = sin límite.
	LoginLimiter         rate.Limiter
	ConsentCreateLimiter rate.Limiter
	CORSAllowedOrigins   []string
}

// New construye el router con la cadena completa de middlewares.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())
	r.Use(mw.WithSecurityHeaders())
	if len(d.CORSAllowedOrigins) > 0 {
		r.Use(mw.WithCORS(d.CORSAllowedOrigins))
	}

	// Operacional, sin auth.
	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Catálogo público de scopes.
		r.Get("/scopes", d.AppData.Scopes)

		// Auth de usuarios.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.With(mw.WithRateLimit(d.LoginLimiter, mw.KeyByIP)).
				Post("/login", d.Auth.Login)
			r.With(mw.WithSession(d.Sessions), mw.RequireUser()).
				Get("/me", d.Auth.Me)
		})

		// Lecturas resueltas: la sesión es opcional, el resolver decide con
		// lo que haya.
		r.Group(func(r chi.Router) {
			r.Use(mw.WithSession(d.Sessions))
			r.Get("/identities/{identityID}", d.Identities.Get)
			r.Get("/users/{userID}/identities", d.Identities.Browse)
		})

		// Todo lo demás del plano de usuario requiere sesión.
		r.Group(func(r chi.Router) {
			r.Use(mw.WithSession(d.Sessions), mw.RequireUser())

			r.Post("/identities", d.Identities.Create)
			r.Get("/identities", d.Identities.List)
			r.Put("/identities/{identityID}", d.Identities.Update)
			r.Delete("/identities/{identityID}", d.Identities.Delete)

			r.Route("/apps", func(r chi.Router) {
				r.Post("/", d.Apps.Create)
				r.Get("/", d.Apps.List)
				r.Get("/{appID}", d.Apps.Get)
				r.Put("/{appID}", d.Apps.Update)
				r.Delete("/{appID}", d.Apps.Delete)
				r.Post("/{appID}/api-key", d.Apps.GenerateKey)
			})

			r.Route("/consent-requests", func(r chi.Router) {
				r.With(mw.WithRateLimit(d.ConsentCreateLimiter, mw.KeyByUser)).
					Post("/", d.ConsentRequests.Create)
				r.Get("/incoming", d.ConsentRequests.ListIncoming)
				r.Get("/outgoing", d.ConsentRequests.ListOutgoing)
				r.Get("/{requestID}", d.ConsentRequests.Get)
				r.Post("/{requestID}/approve", d.ConsentRequests.Approve)
				r.Post("/{requestID}/reject", d.ConsentRequests.Reject)
			})

			r.Route("/consents", func(r chi.Router) {
				r.Get("/", d.Consents.List)
				r.Post("/grant", d.Consents.BatchGrant)
				r.Post("/{consentID}/revoke", d.Consents.Revoke)
			})
		})

		// Data-plane para apps, autenticado por API key.
		r.Group(func(r chi.Router) {
			r.Use(mw.WithAppAuth(d.AppAuth))
			r.Get("/app/identities/{identityID}", d.AppData.GetIdentity)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteError(w, helpers.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteError(w, &helpers.HTTPError{
			Code: "method_not_allowed", Message: "Method not allowed", Status: http.StatusMethodNotAllowed,
		})
	})

	return r
}
