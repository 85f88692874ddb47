package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/http/middlewares"
	"github.com/dropDatabas3/personavault/internal/policy"
	"github.com/dropDatabas3/personavault/internal/scope"
)

// AppDataHandler es el data-plane para apps autenticadas por API key.
type AppDataHandler struct {
	store    repository.Store
	resolver *policy.Resolver
}

func NewAppDataHandler(store repository.Store, resolver *policy.Resolver) *AppDataHandler {
	return &AppDataHandler{store: store, resolver: resolver}
}

// GetIdentity maneja GET /v1/app/identities/{identityID}. La app ya viene
// autenticada en el contexto; el resolver decide contra los consents activos.
func (h *AppDataHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app := middlewares.GetApp(ctx)
	if app == nil {
		helpers.WriteError(w, helpers.ErrUnauthorized)
		return
	}
	if !app.Connectable() {
		helpers.WriteError(w, helpers.ErrForbidden.WithDetail("app is not approved for data access"))
		return
	}

	identity, err := h.store.Identities().Get(ctx, chi.URLParam(r, "identityID"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	decision, err := h.resolver.Resolve(ctx, identity, policy.Requester{Kind: policy.RequesterApp, App: app}, scope.IdentityRead)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	writeDecision(w, decision)
}

// Scopes maneja GET /v1/scopes: el catálogo de scopes reconocidos y los
// campos que desbloquea cada uno. Público, es parte del contrato con apps.
func (h *AppDataHandler) Scopes(w http.ResponseWriter, r *http.Request) {
	all := scope.All()
	out := make([]map[string]any, 0, len(all))
	for _, s := range all {
		fields := make([]string, 0)
		for f := range scope.FieldsFor([]string{s}) {
			fields = append(fields, f)
		}
		out = append(out, map[string]any{"scope": s, "fields": fields})
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"scopes": out})
}
