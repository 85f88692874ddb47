package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/personavault/internal/consent"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/http/middlewares"
	"github.com/dropDatabas3/personavault/internal/metrics"
)

// ConsentRequestHandler maneja el ciclo de vida de los consent requests.
type ConsentRequestHandler struct {
	svc   *consent.Service
	store repository.Store
}

func NewConsentRequestHandler(svc *consent.Service, store repository.Store) *ConsentRequestHandler {
	return &ConsentRequestHandler{svc: svc, store: store}
}

type createConsentRequestRequest struct {
	IdentityID         string   `json:"identityId"`
	AppID              *string  `json:"appId,omitempty"`
	RequestedScopes    []string `json:"requestedScopes"`
	ContextDescription string   `json:"contextDescription"`
}

// Create maneja POST /v1/consent-requests.
func (h *ConsentRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createConsentRequestRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}

	created, err := h.svc.CreateRequest(ctx, consent.CreateRequestInput{
		IdentityID:         req.IdentityID,
		RequestingUserID:   middlewares.GetUserID(ctx),
		AppID:              req.AppID,
		RequestedScopes:    req.RequestedScopes,
		ContextDescription: req.ContextDescription,
	})
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	metrics.ConsentRequestsCreated.Inc()
	helpers.WriteJSON(w, http.StatusCreated, toConsentRequestResponse(created))
}

// ListIncoming maneja GET /v1/consent-requests/incoming: requests donde el
// caller es el target (los que tiene que decidir).
func (h *ConsentRequestHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqs, err := h.store.ConsentRequests().ListIncoming(ctx, middlewares.GetUserID(ctx))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	writeRequestList(w, reqs)
}

// ListOutgoing maneja GET /v1/consent-requests/outgoing: requests creados por
// el caller.
func (h *ConsentRequestHandler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reqs, err := h.store.ConsentRequests().ListOutgoing(ctx, middlewares.GetUserID(ctx))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	writeRequestList(w, reqs)
}

// Get maneja GET /v1/consent-requests/{requestID}. Solo target o requester.
func (h *ConsentRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := h.store.ConsentRequests().Get(ctx, chi.URLParam(r, "requestID"))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	uid := middlewares.GetUserID(ctx)
	if req.TargetUserID != uid && req.RequestingUserID != uid {
		// 404, no 403: no confirmamos la existencia de requests ajenos.
		helpers.WriteError(w, helpers.ErrNotFound)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toConsentRequestResponse(req))
}

// Approve maneja POST /v1/consent-requests/{requestID}/approve.
func (h *ConsentRequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, consent.DecisionApprove)
}

// Reject maneja POST /v1/consent-requests/{requestID}/reject.
func (h *ConsentRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, consent.DecisionReject)
}

func (h *ConsentRequestHandler) decide(w http.ResponseWriter, r *http.Request, decision consent.Decision) {
	ctx := r.Context()

	req, err := h.svc.DecideRequest(ctx, chi.URLParam(r, "requestID"), middlewares.GetUserID(ctx), decision)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	metrics.ConsentDecisionsTotal.WithLabelValues(string(req.Status)).Inc()
	helpers.WriteJSON(w, http.StatusOK, toConsentRequestResponse(req))
}

func writeRequestList(w http.ResponseWriter, reqs []repository.ConsentRequest) {
	out := make([]consentRequestResponse, 0, len(reqs))
	for i := range reqs {
		out = append(out, toConsentRequestResponse(&reqs[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"requests": out})
}
