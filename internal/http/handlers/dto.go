// Package handlers contiene los HTTP handlers de la API v1.
package handlers

import (
	"fmt"
	"time"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// identityRequest es el payload de create/update de identidades.
type identityRequest struct {
	Label                   string                      `json:"identityLabel"`
	Category                repository.IdentityCategory `json:"category"`
	CustomCategoryName      string                      `json:"customCategoryName,omitempty"`
	Description             string                      `json:"description,omitempty"`
	NameDetails             *repository.NameDetails     `json:"nameDetails,omitempty"`
	NameHistory             []repository.NameChange     `json:"nameHistory,omitempty"`
	ReligiousNames          []string                    `json:"religiousNames,omitempty"`
	GenderIdentity          string                      `json:"genderIdentity,omitempty"`
	CustomGenderDescription string                      `json:"customGenderDescription,omitempty"`
	Pronouns                string                      `json:"pronouns,omitempty"`
	DateOfBirth             *time.Time                  `json:"dateOfBirth,omitempty"`
	Location                string                      `json:"location,omitempty"`
	ProfilePictureURL       string                      `json:"profilePictureUrl,omitempty"`
	ContactDetails          map[string]string           `json:"contactDetails,omitempty"`
	OnlinePresence          map[string]string           `json:"onlinePresence,omitempty"`
	WebsiteURLs             []string                    `json:"websiteUrls,omitempty"`
	AdditionalAttributes    map[string]any              `json:"additionalAttributes,omitempty"`
	Visibility              repository.Visibility       `json:"visibility,omitempty"`
}

// toInput valida y convierte al input de repositorio. La visibilidad por
// defecto es PRIVATE: nada se expone sin decisión explícita del usuario.
func (r *identityRequest) toInput() (repository.IdentityInput, error) {
	var zero repository.IdentityInput

	if r.Label == "" {
		return zero, fmt.Errorf("%w: identityLabel is required", repository.ErrInvalidInput)
	}
	if r.Visibility == "" {
		r.Visibility = repository.VisibilityPrivate
	}
	if !r.Visibility.Valid() {
		return zero, fmt.Errorf("%w: unknown visibility %q", repository.ErrInvalidInput, r.Visibility)
	}
	if r.Category == "" {
		r.Category = repository.CategorySocial
	}
	if r.Category == repository.CategoryCustom && r.CustomCategoryName == "" {
		return zero, fmt.Errorf("%w: customCategoryName is required for CUSTOM category", repository.ErrInvalidInput)
	}

	return repository.IdentityInput{
		Label:                r.Label,
		Category:             r.Category,
		CustomCategoryName:   r.CustomCategoryName,
		Description:          r.Description,
		NameDetails:          r.NameDetails,
		NameHistory:          r.NameHistory,
		ReligiousNames:       r.ReligiousNames,
		GenderIdentity:       r.GenderIdentity,
		CustomGenderDesc:     r.CustomGenderDescription,
		Pronouns:             r.Pronouns,
		DateOfBirth:          r.DateOfBirth,
		Location:             r.Location,
		ProfilePictureURL:    r.ProfilePictureURL,
		ContactDetails:       r.ContactDetails,
		OnlinePresence:       r.OnlinePresence,
		WebsiteURLs:          r.WebsiteURLs,
		AdditionalAttributes: r.AdditionalAttributes,
		Visibility:           r.Visibility,
	}, nil
}

// identityResponse es la vista completa (FULL) de una identidad.
type identityResponse struct {
	ID                      string                      `json:"id"`
	OwnerID                 string                      `json:"ownerId"`
	Label                   string                      `json:"identityLabel"`
	Category                repository.IdentityCategory `json:"category"`
	CustomCategoryName      string                      `json:"customCategoryName,omitempty"`
	Description             string                      `json:"description,omitempty"`
	NameDetails             *repository.NameDetails     `json:"nameDetails,omitempty"`
	NameHistory             []repository.NameChange     `json:"nameHistory,omitempty"`
	ReligiousNames          []string                    `json:"religiousNames,omitempty"`
	GenderIdentity          string                      `json:"genderIdentity,omitempty"`
	CustomGenderDescription string                      `json:"customGenderDescription,omitempty"`
	Pronouns                string                      `json:"pronouns,omitempty"`
	DateOfBirth             *time.Time                  `json:"dateOfBirth,omitempty"`
	Location                string                      `json:"location,omitempty"`
	ProfilePictureURL       string                      `json:"profilePictureUrl,omitempty"`
	ContactDetails          map[string]string           `json:"contactDetails,omitempty"`
	OnlinePresence          map[string]string           `json:"onlinePresence,omitempty"`
	WebsiteURLs             []string                    `json:"websiteUrls,omitempty"`
	AdditionalAttributes    map[string]any              `json:"additionalAttributes,omitempty"`
	Visibility              repository.Visibility       `json:"visibility"`
	CreatedAt               time.Time                   `json:"createdAt"`
	UpdatedAt               time.Time                   `json:"updatedAt"`
}

func toIdentityResponse(i *repository.Identity) identityResponse {
	return identityResponse{
		ID:                      i.ID,
		OwnerID:                 i.UserID,
		Label:                   i.Label,
		Category:                i.Category,
		CustomCategoryName:      i.CustomCategoryName,
		Description:             i.Description,
		NameDetails:             i.NameDetails,
		NameHistory:             i.NameHistory,
		ReligiousNames:          i.ReligiousNames,
		GenderIdentity:          i.GenderIdentity,
		CustomGenderDescription: i.CustomGenderDesc,
		Pronouns:                i.Pronouns,
		DateOfBirth:             i.DateOfBirth,
		Location:                i.Location,
		ProfilePictureURL:       i.ProfilePictureURL,
		ContactDetails:          i.ContactDetails,
		OnlinePresence:          i.OnlinePresence,
		WebsiteURLs:             i.WebsiteURLs,
		AdditionalAttributes:    i.AdditionalAttributes,
		Visibility:              i.Visibility,
		CreatedAt:               i.CreatedAt,
		UpdatedAt:               i.UpdatedAt,
	}
}

// appResponse nunca incluye el hash de la API key.
type appResponse struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"ownerId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	WebsiteURL       string    `json:"websiteUrl,omitempty"`
	LogoURL          string    `json:"logoUrl,omitempty"`
	PrivacyPolicyURL string    `json:"privacyPolicyUrl,omitempty"`
	TermsURL         string    `json:"termsUrl,omitempty"`
	RedirectURIs     []string  `json:"redirectUris,omitempty"`
	HasAPIKey        bool      `json:"hasApiKey"`
	IsEnabled        bool      `json:"isEnabled"`
	IsAdminApproved  bool      `json:"isAdminApproved"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toAppResponse(a *repository.App) appResponse {
	return appResponse{
		ID:               a.ID,
		OwnerID:          a.OwnerID,
		Name:             a.Name,
		Description:      a.Description,
		WebsiteURL:       a.WebsiteURL,
		LogoURL:          a.LogoURL,
		PrivacyPolicyURL: a.PrivacyPolicyURL,
		TermsURL:         a.TermsURL,
		RedirectURIs:     a.RedirectURIs,
		HasAPIKey:        a.APIKeyHash != nil,
		IsEnabled:        a.IsEnabled,
		IsAdminApproved:  a.IsAdminApproved,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

type consentResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	AppID         *string    `json:"appId"`
	IdentityID    *string    `json:"identityId"`
	GrantedScopes []string   `json:"grantedScopes"`
	GrantedAt     time.Time  `json:"grantedAt"`
	RevokedAt     *time.Time `json:"revokedAt,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Active        bool       `json:"active"`
}

func toConsentResponse(c *repository.Consent) consentResponse {
	return consentResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		AppID:         c.AppID,
		IdentityID:    c.IdentityID,
		GrantedScopes: c.GrantedScopes,
		GrantedAt:     c.GrantedAt,
		RevokedAt:     c.RevokedAt,
		ExpiresAt:     c.ExpiresAt,
		Active:        c.Active(time.Now()),
	}
}

type consentRequestResponse struct {
	ID                 string                   `json:"id"`
	TargetUserID       string                   `json:"targetUserId"`
	IdentityID         string                   `json:"identityId"`
	RequestingUserID   string                   `json:"requestingUserId"`
	AppID              *string                  `json:"appId"`
	RequestedScopes    []string                 `json:"requestedScopes"`
	ContextDescription string                   `json:"contextDescription"`
	Status             repository.RequestStatus `json:"status"`
	CreatedAt          time.Time                `json:"createdAt"`
	ProcessedAt        *time.Time               `json:"processedAt,omitempty"`
}

func toConsentRequestResponse(r *repository.ConsentRequest) consentRequestResponse {
	return consentRequestResponse{
		ID:                 r.ID,
		TargetUserID:       r.TargetUserID,
		IdentityID:         r.IdentityID,
		RequestingUserID:   r.RequestingUserID,
		AppID:              r.AppID,
		RequestedScopes:    r.RequestedScopes,
		ContextDescription: r.ContextDescription,
		Status:             r.Status,
		CreatedAt:          r.CreatedAt,
		ProcessedAt:        r.ProcessedAt,
	}
}
