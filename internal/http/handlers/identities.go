package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/http/middlewares"
	"github.com/dropDatabas3/personavault/internal/metrics"
	"github.com/dropDatabas3/personavault/internal/policy"
)

// IdentityHandler maneja el CRUD de identidades y la lectura resuelta por
// visibilidad.
type IdentityHandler struct {
	store    repository.Store
	resolver *policy.Resolver
}

func NewIdentityHandler(store repository.Store, resolver *policy.Resolver) *IdentityHandler {
	return &IdentityHandler{store: store, resolver: resolver}
}

// Create maneja POST /v1/identities.
func (h *IdentityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req identityRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	identity, err := h.store.Identities().Create(ctx, middlewares.GetUserID(ctx), input)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toIdentityResponse(identity))
}

// List maneja GET /v1/identities: las identidades propias, siempre completas.
func (h *IdentityHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identities, err := h.store.Identities().ListByUser(ctx, middlewares.GetUserID(ctx))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	out := make([]identityResponse, 0, len(identities))
	for i := range identities {
		out = append(out, toIdentityResponse(&identities[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"identities": out})
}

// Browse maneja GET /v1/users/{userID}/identities: las identidades de otro
// usuario, cada una pasada por el resolver. Las denegadas no aparecen en el
// listado; el resto sale como FULL, PROJECTED o STUB según el tier.
func (h *IdentityHandler) Browse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identities, err := h.store.Identities().ListByUser(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	requester := policy.Requester{Kind: policy.RequesterAnonymous}
	if uid := middlewares.GetUserID(ctx); uid != "" {
		requester = policy.Requester{Kind: policy.RequesterUser, UserID: uid}
	}

	views, err := h.browseViews(ctx, identities, requester)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"identities": views})
}

// browseViews resuelve cada identidad y arma la lista visible para el
// requester. Una decisión DENY omite la identidad por completo.
func (h *IdentityHandler) browseViews(ctx context.Context, identities []repository.Identity, req policy.Requester) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(identities))
	for i := range identities {
		d, err := h.resolver.Resolve(ctx, &identities[i], req, "")
		if err != nil {
			return nil, err
		}
		switch d.Kind {
		case policy.AccessFull:
			out = append(out, map[string]any{"access": d.Kind, "identity": toIdentityResponse(d.Full)})
		case policy.AccessProjected:
			out = append(out, map[string]any{"access": d.Kind, "identity": d.Projected})
		case policy.AccessStub:
			out = append(out, map[string]any{"access": d.Kind, "identity": d.Stub})
		}
	}
	return out, nil
}

// Get maneja GET /v1/identities/{identityID}. La respuesta depende de quién
// pregunta: el resolver decide FULL, PROJECTED, STUB o DENY.
func (h *IdentityHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.store.Identities().Get(ctx, chi.URLParam(r, "identityID"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	requester := policy.Requester{Kind: policy.RequesterAnonymous}
	if uid := middlewares.GetUserID(ctx); uid != "" {
		requester = policy.Requester{Kind: policy.RequesterUser, UserID: uid}
	}

	decision, err := h.resolver.Resolve(ctx, identity, requester, "")
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	writeDecision(w, decision)
}

// Update maneja PUT /v1/identities/{identityID}. Solo el dueño.
func (h *IdentityHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.store.Identities().Get(ctx, chi.URLParam(r, "identityID"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	if identity.UserID != middlewares.GetUserID(ctx) {
		helpers.WriteError(w, helpers.ErrForbidden.WithDetail("only the owner may update an identity"))
		return
	}

	var req identityRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	updated, err := h.store.Identities().Update(ctx, identity.ID, input)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toIdentityResponse(updated))
}

// Delete maneja DELETE /v1/identities/{identityID}. Solo el dueño.
func (h *IdentityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.store.Identities().Get(ctx, chi.URLParam(r, "identityID"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	if identity.UserID != middlewares.GetUserID(ctx) {
		helpers.WriteError(w, helpers.ErrForbidden.WithDetail("only the owner may delete an identity"))
		return
	}

	if err := h.store.Identities().Delete(ctx, identity.ID); err != nil {
		helpers.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDecision serializa una decisión del resolver al contrato HTTP común a
// lecturas de usuario y de app.
func writeDecision(w http.ResponseWriter, d *policy.Decision) {
	metrics.IdentityResolutionsTotal.WithLabelValues(string(d.Kind)).Inc()

	switch d.Kind {
	case policy.AccessFull:
		helpers.WriteJSON(w, http.StatusOK, map[string]any{
			"access":   d.Kind,
			"identity": toIdentityResponse(d.Full),
		})
	case policy.AccessProjected:
		helpers.WriteJSON(w, http.StatusOK, map[string]any{
			"access":   d.Kind,
			"identity": d.Projected,
		})
	case policy.AccessStub:
		helpers.WriteJSON(w, http.StatusOK, map[string]any{
			"access":   d.Kind,
			"identity": d.Stub,
		})
	default:
		status := http.StatusForbidden
		msg := "Access to this identity requires consent"
		if d.Reason == policy.ReasonAuthenticationRequired {
			status = http.StatusUnauthorized
			msg = "Access to this identity requires authentication"
		}
		helpers.WriteError(w, &helpers.HTTPError{
			Code:    d.Reason,
			Message: msg,
			Status:  status,
			Extra:   map[string]any{"requiredScopes": d.RequiredScopes},
		})
	}
}
