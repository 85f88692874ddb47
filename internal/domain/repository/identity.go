package repository

import (
	"context"
	"time"
)

// Visibility define el tier de visibilidad por defecto de una identidad.
type Visibility string

const (
	VisibilityPublic             Visibility = "PUBLIC"
	VisibilityPrivate            Visibility = "PRIVATE"
	VisibilityAppSpecific        Visibility = "APP_SPECIFIC"
	VisibilityAuthenticatedUsers Visibility = "AUTHENTICATED_USERS"
)

// Valid retorna true si el valor es un tier conocido.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityAppSpecific, VisibilityAuthenticatedUsers:
		return true
	}
	return false
}

// IdentityCategory clasifica la identidad (persona profesional, gaming, etc).
type IdentityCategory string

const (
	CategoryProfessional IdentityCategory = "PROFESSIONAL"
	CategorySocial       IdentityCategory = "SOCIAL"
	CategoryGaming       IdentityCategory = "GAMING"
	CategoryCreative     IdentityCategory = "CREATIVE"
	CategoryCustom       IdentityCategory = "CUSTOM"
)

// NameDetails agrupa el nombre preferido y su contexto de uso.
type NameDetails struct {
	PreferredName string `json:"preferredName,omitempty"`
	UsageContext  string `json:"usageContext,omitempty"`
}

// NameChange es una entrada del historial de cambios de nombre.
type NameChange struct {
	Name    string     `json:"name"`
	From    *time.Time `json:"from,omitempty"`
	To      *time.Time `json:"to,omitempty"`
	Context string     `json:"context,omitempty"`
}

// Identity representa una persona/identidad gestionada por un usuario.
// customCategoryName solo tiene significado cuando Category == CUSTOM.
type Identity struct {
	ID                   string
	UserID               string
	Label                string
	Category             IdentityCategory
	CustomCategoryName   string
	Description          string
	NameDetails          *NameDetails
	NameHistory          []NameChange
	ReligiousNames       []string
	GenderIdentity       string
	CustomGenderDesc     string
	Pronouns             string
	DateOfBirth          *time.Time
	Location             string
	ProfilePictureURL    string
	ContactDetails       map[string]string
	OnlinePresence       map[string]string
	WebsiteURLs          []string
	AdditionalAttributes map[string]any
	Visibility           Visibility
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IdentityInput contiene los datos para crear/actualizar una identidad.
type IdentityInput struct {
	Label                string
	Category             IdentityCategory
	CustomCategoryName   string
	Description          string
	NameDetails          *NameDetails
	NameHistory          []NameChange
	ReligiousNames       []string
	GenderIdentity       string
	CustomGenderDesc     string
	Pronouns             string
	DateOfBirth          *time.Time
	Location             string
	ProfilePictureURL    string
	ContactDetails       map[string]string
	OnlinePresence       map[string]string
	WebsiteURLs          []string
	AdditionalAttributes map[string]any
	Visibility           Visibility
}

// IdentityRepository define operaciones sobre identidades.
type IdentityRepository interface {
	// Create crea una identidad para el usuario dueño.
	Create(ctx context.Context, userID string, input IdentityInput) (*Identity, error)

	// Get obtiene una identidad por ID.
	// Retorna ErrNotFound si no existe.
	Get(ctx context.Context, identityID string) (*Identity, error)

	// ListByUser lista las identidades de un usuario.
	ListByUser(ctx context.Context, userID string) ([]Identity, error)

	// Update actualiza una identidad existente (solo el dueño).
	Update(ctx context.Context, identityID string, input IdentityInput) (*Identity, error)

	// Delete elimina una identidad (cascade a asociaciones de cuentas externas).
	Delete(ctx context.Context, identityID string) error
}
