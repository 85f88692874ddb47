package repository

import (
	"context"
	"time"
)

// App representa una aplicación third-party registrada por un usuario.
type App struct {
	ID               string
	OwnerID          string
	Name             string
	Description      string
	WebsiteURL       string
	LogoURL          string
	PrivacyPolicyURL string
	TermsURL         string
	RedirectURIs     []string

	// APIKeyHash es el PHC string argon2id de la API key (salt embebido).
	// Nil hasta que el dueño genera la primera key. El plaintext nunca se persiste.
	APIKeyHash *string

	IsEnabled       bool
	IsSystemApp     bool
	IsAdminApproved bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Connectable retorna true si la app puede recibir consents de usuarios.
func (a *App) Connectable() bool {
	return !a.IsSystemApp && a.IsAdminApproved && a.IsEnabled
}

// AppInput contiene los datos para crear/actualizar una app.
type AppInput struct {
	Name             string
	Description      string
	WebsiteURL       string
	LogoURL          string
	PrivacyPolicyURL string
	TermsURL         string
	RedirectURIs     []string
}

// AppRepository define operaciones sobre apps registradas.
type AppRepository interface {
	// Create crea una app. Retorna ErrConflict si el nombre ya existe.
	Create(ctx context.Context, ownerID string, input AppInput) (*App, error)

	// Get obtiene una app por ID. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, appID string) (*App, error)

	// ListByOwner lista las apps de un usuario.
	ListByOwner(ctx context.Context, ownerID string) ([]App, error)

	// Update actualiza una app existente.
	Update(ctx context.Context, appID string, input AppInput) (*App, error)

	// SetAPIKeyHash reemplaza el hash de la API key (regeneración invalida la anterior).
	SetAPIKeyHash(ctx context.Context, appID, phc string) error

	// Delete elimina una app.
	Delete(ctx context.Context, appID string) error
}
