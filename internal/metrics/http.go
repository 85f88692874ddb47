// Package metrics define las métricas Prometheus de la aplicación. Paquete
// standalone para evitar ciclos de import entre HTTP y los servicios.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Requests HTTP por método, ruta y status",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "Duración de requests HTTP en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"method", "route"})

	ConsentRequestsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "consent_requests_created_total",
		Help: "Consent requests creados",
	})

	ConsentDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_decisions_total",
		Help: "Decisiones sobre consent requests (approved|rejected)",
	}, []string{"decision"})

	IdentityResolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_resolutions_total",
		Help: "Resoluciones de visibilidad por resultado (FULL|PROJECTED|STUB|DENY)",
	}, []string{"access"})

	AppAuthFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "app_auth_failures_total",
		Help: "Autenticaciones de app fallidas (API key inválida)",
	})
)

// Register registra las métricas en el registry dado (default si es nil).
// Tolera doble registro para que los tests puedan llamar Register otra vez.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPDuration,
		ConsentRequestsCreated,
		ConsentDecisionsTotal,
		IdentityResolutionsTotal,
		AppAuthFailures,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Handler expone el endpoint /metrics.
func Handler() http.Handler { return promhttp.Handler() }
