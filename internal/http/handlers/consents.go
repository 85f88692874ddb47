package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/personavault/internal/consent"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/http/middlewares"
)

// ConsentHandler maneja los grants: listado, batch grant y revocación.
type ConsentHandler struct {
	svc   *consent.Service
	store repository.Store
}

func NewConsentHandler(svc *consent.Service, store repository.Store) *ConsentHandler {
	return &ConsentHandler{svc: svc, store: store}
}

// List maneja GET /v1/consents. Con ?active=true filtra revocados y expirados.
func (h *ConsentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activeOnly := r.URL.Query().Get("active") == "true"

	consents, err := h.store.Consents().ListByUser(ctx, middlewares.GetUserID(ctx), activeOnly)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	out := make([]consentResponse, 0, len(consents))
	for i := range consents {
		out = append(out, toConsentResponse(&consents[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"consents": out})
}

type batchGrantRequest struct {
	AppID       string   `json:"appId"`
	IdentityIDs []string `json:"identityIds"`
	Scopes      []string `json:"scopes"`
}

// BatchGrant maneja POST /v1/consents/grant: un grant por identidad para una
// app, todo-o-nada.
func (h *ConsentHandler) BatchGrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchGrantRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}
	if req.AppID == "" {
		helpers.WriteError(w, helpers.ErrBadRequest.WithDetail("appId is required"))
		return
	}

	granted, err := h.svc.BatchGrant(ctx, middlewares.GetUserID(ctx), req.AppID, req.IdentityIDs, req.Scopes)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"granted": granted})
}

// Revoke maneja POST /v1/consents/{consentID}/revoke. Idempotente.
func (h *ConsentHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.svc.Revoke(ctx, chi.URLParam(r, "consentID"), middlewares.GetUserID(ctx)); err != nil {
		helpers.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
