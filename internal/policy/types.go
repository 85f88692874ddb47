// Package policy implements the disclosure core: the identity projector and
// the visibility resolver. Both are driven by the scope policy table and by
// active consents; neither holds state of its own.
package policy

import (
	"time"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// RequesterKind distinguishes who is asking for identity data.
type RequesterKind string

const (
	RequesterAnonymous RequesterKind = "anonymous"
	RequesterUser      RequesterKind = "user"
	RequesterApp       RequesterKind = "app"
)

// Requester is the explicit caller context handed to Resolve. It replaces any
// ambient session lookup: handlers build it once from the request and the core
// never touches globals.
type Requester struct {
	Kind   RequesterKind
	UserID string          // set when Kind == RequesterUser
	App    *repository.App // set when Kind == RequesterApp
}

// AccessKind is the outcome tag of a resolution.
type AccessKind string

const (
	AccessFull      AccessKind = "FULL"
	AccessProjected AccessKind = "PROJECTED"
	AccessStub      AccessKind = "STUB"
	AccessDeny      AccessKind = "DENY"
)

// Deny reasons, stable machine-readable strings for calling apps.
const (
	ReasonConsentRequired        = "consent_required"
	ReasonAuthenticationRequired = "authentication_required"
)

// Decision is the single tagged result of the visibility resolver. Exactly one
// payload field is set, matching Kind.
type Decision struct {
	Kind AccessKind

	Full      *repository.Identity
	Projected *ProjectedIdentity
	Stub      *IdentityStub

	// DENY only.
	Reason         string
	RequiredScopes []string

	// Set on PROJECTED app reads: the consent that satisfied the check.
	ConsentID string
}

// ProjectedIdentity is the redacted wire view of an identity. Fields not
// unlocked by any granted scope stay at their zero value and marshal away via
// omitempty, so the payload never discloses undisclosed values.
type ProjectedIdentity struct {
	ID         string                `json:"id"`
	OwnerID    string                `json:"ownerId"`
	Visibility repository.Visibility `json:"visibility"`

	IdentityLabel           string                      `json:"identityLabel,omitempty"`
	ProfilePictureURL       string                      `json:"profilePictureUrl,omitempty"`
	Description             string                      `json:"description,omitempty"`
	Category                repository.IdentityCategory `json:"category,omitempty"`
	CustomCategoryName      string                      `json:"customCategoryName,omitempty"`
	NameDetails             *repository.NameDetails     `json:"nameDetails,omitempty"`
	NameHistory             []repository.NameChange     `json:"nameHistory,omitempty"`
	ReligiousNames          []string                    `json:"religiousNames,omitempty"`
	GenderIdentity          string                      `json:"genderIdentity,omitempty"`
	CustomGenderDescription string                      `json:"customGenderDescription,omitempty"`
	Pronouns                string                      `json:"pronouns,omitempty"`
	DateOfBirth             *time.Time                  `json:"dateOfBirth,omitempty"`
	Location                string                      `json:"location,omitempty"`
	ContactDetails          map[string]string           `json:"contactDetails,omitempty"`
	OnlinePresence          map[string]string           `json:"onlinePresence,omitempty"`
	WebsiteURLs             []string                    `json:"websiteUrls,omitempty"`
	AdditionalAttributes    map[string]any              `json:"additionalAttributes,omitempty"`
}

// Stub placeholder values. Never the real label or picture.
const (
	StubLabelPrivate     = "Private Identity"
	StubLabelRestricted  = "Restricted Identity"
	StubPlaceholderImage = "/static/img/identity-placeholder.png"
)

// IdentityStub is the non-revealing view of a private/app-specific identity.
type IdentityStub struct {
	ID                 string                      `json:"id"`
	Visibility         repository.Visibility       `json:"visibility"`
	Category           repository.IdentityCategory `json:"category,omitempty"`
	CustomCategoryName string                      `json:"customCategoryName,omitempty"`
	IdentityLabel      string                      `json:"identityLabel"`
	ProfilePictureURL  string                      `json:"profilePictureUrl"`
}
