package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/http/helpers"
	"github.com/dropDatabas3/personavault/internal/http/middlewares"
	"github.com/dropDatabas3/personavault/internal/observability/logger"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
)

// AppCacheInvalidator descarta la entrada cacheada de una app tras una
// escritura, para que el data-plane no sirva un registro viejo.
type AppCacheInvalidator interface {
	Invalidate(ctx context.Context, id string)
}

// AppHandler maneja el registro y la gestión de apps third-party.
type AppHandler struct {
	store    repository.Store
	appCache AppCacheInvalidator
}

// NewAppHandler construye el handler. appCache puede ser nil (sin cache).
func NewAppHandler(store repository.Store, appCache AppCacheInvalidator) *AppHandler {
	return &AppHandler{store: store, appCache: appCache}
}

func (h *AppHandler) invalidate(ctx context.Context, appID string) {
	if h.appCache != nil {
		h.appCache.Invalidate(ctx, appID)
	}
}

type appRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	WebsiteURL       string   `json:"websiteUrl,omitempty"`
	LogoURL          string   `json:"logoUrl,omitempty"`
	PrivacyPolicyURL string   `json:"privacyPolicyUrl,omitempty"`
	TermsURL         string   `json:"termsUrl,omitempty"`
	RedirectURIs     []string `json:"redirectUris,omitempty"`
}

// maxRedirectURIs limita cuántos redirect URIs puede declarar una app.
const maxRedirectURIs = 5

func (r *appRequest) toInput() (repository.AppInput, error) {
	var zero repository.AppInput

	if r.Name == "" {
		return zero, fmt.Errorf("%w: name is required", repository.ErrInvalidInput)
	}
	if len(r.RedirectURIs) == 0 {
		return zero, fmt.Errorf("%w: at least one redirect URI is required", repository.ErrInvalidInput)
	}
	if len(r.RedirectURIs) > maxRedirectURIs {
		return zero, fmt.Errorf("%w: at most %d redirect URIs are allowed", repository.ErrInvalidInput, maxRedirectURIs)
	}
	for _, raw := range r.RedirectURIs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return zero, fmt.Errorf("%w: redirect URI %q is not an absolute URL", repository.ErrInvalidInput, raw)
		}
	}

	return repository.AppInput{
		Name:             r.Name,
		Description:      r.Description,
		WebsiteURL:       r.WebsiteURL,
		LogoURL:          r.LogoURL,
		PrivacyPolicyURL: r.PrivacyPolicyURL,
		TermsURL:         r.TermsURL,
		RedirectURIs:     r.RedirectURIs,
	}, nil
}

// Create maneja POST /v1/apps.
func (h *AppHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req appRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	app, err := h.store.Apps().Create(ctx, middlewares.GetUserID(ctx), input)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toAppResponse(app))
}

// List maneja GET /v1/apps: las apps del usuario.
func (h *AppHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	apps, err := h.store.Apps().ListByOwner(ctx, middlewares.GetUserID(ctx))
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	out := make([]appResponse, 0, len(apps))
	for i := range apps {
		out = append(out, toAppResponse(&apps[i]))
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"apps": out})
}

// Get maneja GET /v1/apps/{appID}.
func (h *AppHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.ownedApp(r)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toAppResponse(app))
}

// Update maneja PUT /v1/apps/{appID}.
func (h *AppHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.ownedApp(r)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	var req appRequest
	if err := helpers.DecodeJSON(w, r, &req); err != nil {
		helpers.WriteError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	updated, err := h.store.Apps().Update(ctx, app.ID, input)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	h.invalidate(ctx, app.ID)
	helpers.WriteJSON(w, http.StatusOK, toAppResponse(updated))
}

// Delete maneja DELETE /v1/apps/{appID}.
func (h *AppHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	app, err := h.ownedApp(r)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}
	if err := h.store.Apps().Delete(ctx, app.ID); err != nil {
		helpers.WriteError(w, err)
		return
	}
	h.invalidate(ctx, app.ID)
	w.WriteHeader(http.StatusNoContent)
}

// GenerateKey maneja POST /v1/apps/{appID}/api-key. El plaintext se devuelve
// una única vez; regenerar invalida la key anterior en el acto.
func (h *AppHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("AppHandler.GenerateKey"))

	app, err := h.ownedApp(r)
	if err != nil {
		helpers.WriteError(w, err)
		return
	}

	plain, phc, err := apikey.Generate()
	if err != nil {
		log.Error("api key generation failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}
	if err := h.store.Apps().SetAPIKeyHash(ctx, app.ID, phc); err != nil {
		helpers.WriteError(w, err)
		return
	}
	h.invalidate(ctx, app.ID)

	log.Info("api key regenerated", logger.AppID(app.ID))
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"appId":  app.ID,
		"apiKey": plain,
		"note":   "store this key now; it will not be shown again",
	})
}

// ownedApp carga la app de la URL y verifica que el caller sea el dueño.
func (h *AppHandler) ownedApp(r *http.Request) (*repository.App, error) {
	app, err := h.store.Apps().Get(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		return nil, err
	}
	if app.OwnerID != middlewares.GetUserID(r.Context()) {
		return nil, helpers.ErrForbidden.WithDetail("only the app owner may manage it")
	}
	return app, nil
}
