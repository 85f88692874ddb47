package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/security/apikey"
)

type fakeApps map[string]*repository.App

func (f fakeApps) Get(_ context.Context, id string) (*repository.App, error) {
	if a, ok := f[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func TestWithAppAuth(t *testing.T) {
	plain, phc, err := apikey.Generate()
	require.NoError(t, err)

	apps := fakeApps{
		"app-1": {ID: "app-1", APIKeyHash: &phc, IsEnabled: true, IsAdminApproved: true},
	}
	authn := apikey.NewAuthenticator(apps)

	var gotApp *repository.App
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotApp = GetApp(r.Context())
	})
	h := Chain(inner, WithAppAuth(authn))

	t.Run("valid key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/app/identities/x", nil)
		req.Header.Set("X-App-ID", "app-1")
		req.Header.Set("X-API-Key", plain)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotApp)
		assert.Equal(t, "app-1", gotApp.ID)
	})

	t.Run("wrong key", func(t *testing.T) {
		gotApp = nil
		req := httptest.NewRequest(http.MethodGet, "/v1/app/identities/x", nil)
		req.Header.Set("X-App-ID", "app-1")
		req.Header.Set("X-API-Key", "pvk_wrong")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, gotApp)
	})

	t.Run("unknown app gets same error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/app/identities/x", nil)
		req.Header.Set("X-App-ID", "nope")
		req.Header.Set("X-API-Key", plain)
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_credentials")
	})
}
