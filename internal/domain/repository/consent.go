package repository

import (
	"context"
	"time"
)

// Consent representa un grant de scopes de un dueño de identidad a una app.
// AppID nil cubre requests user-a-user aprobados sin app mediadora.
// IdentityID nil significa grant a nivel usuario ("todas las identidades").
// RevokedAt nil significa activo; la revocación es soft delete, nunca se borra la fila.
type Consent struct {
	ID            string
	UserID        string
	AppID         *string
	IdentityID    *string
	GrantedScopes []string
	GrantedAt     time.Time
	RevokedAt     *time.Time
	ExpiresAt     *time.Time
}

// Active retorna true si el consent no fue revocado ni expiró.
func (c *Consent) Active(now time.Time) bool {
	if c.RevokedAt != nil {
		return false
	}
	if c.ExpiresAt != nil && !c.ExpiresAt.After(now) {
		return false
	}
	return true
}

// HasScope verifica si el consent otorga el scope pedido.
func (c *Consent) HasScope(scope string) bool {
	for _, s := range c.GrantedScopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ConsentRepository define operaciones sobre consents.
type ConsentRepository interface {
	// Upsert crea o actualiza el consent para (userID, appID, identityID),
	// reemplazando los scopes, refrescando grantedAt y limpiando revokedAt.
	Upsert(ctx context.Context, userID string, appID, identityID *string, scopes []string) (*Consent, error)

	// Get obtiene un consent por ID. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, consentID string) (*Consent, error)

	// FindActive busca el consent activo para (ownerID, appID, identityID).
	// identityID nil busca el grant a nivel usuario.
	// "Activo" = revoked_at IS NULL y (expires_at IS NULL o expires_at > now).
	// Retorna ErrNotFound si no hay match.
	FindActive(ctx context.Context, ownerID, appID string, identityID *string) (*Consent, error)

	// ListByUser lista los consents otorgados por un usuario.
	// Si activeOnly es true, filtra revocados y expirados.
	ListByUser(ctx context.Context, userID string, activeOnly bool) ([]Consent, error)

	// Revoke marca revoked_at = now. Idempotente: revocar un consent ya
	// revocado no modifica revoked_at y no es error.
	Revoke(ctx context.Context, consentID string) error
}
