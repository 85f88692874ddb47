package policy

import (
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/scope"
)

// Project builds the redacted view of an identity under the granted scopes.
// Pure function: no I/O, no mutation of the input, same output for the same
// inputs. Unknown scopes disclose nothing.
//
// id, ownerId and visibility are always present. Every other field is copied
// verbatim (nested structures in full) only when some granted scope unlocks it.
func Project(identity *repository.Identity, grantedScopes []string) *ProjectedIdentity {
	fields := scope.FieldsFor(grantedScopes)

	out := &ProjectedIdentity{
		ID:         identity.ID,
		OwnerID:    identity.UserID,
		Visibility: identity.Visibility,
	}

	if fields[scope.FieldLabel] {
		out.IdentityLabel = identity.Label
	}
	if fields[scope.FieldProfilePictureURL] {
		out.ProfilePictureURL = identity.ProfilePictureURL
	}
	if fields[scope.FieldDescription] {
		out.Description = identity.Description
	}
	if fields[scope.FieldCategory] {
		out.Category = identity.Category
	}
	if fields[scope.FieldCustomCategoryName] {
		out.CustomCategoryName = identity.CustomCategoryName
	}
	if fields[scope.FieldNameDetails] {
		out.NameDetails = identity.NameDetails
	}
	if fields[scope.FieldNameHistory] {
		out.NameHistory = identity.NameHistory
	}
	if fields[scope.FieldReligiousNames] {
		out.ReligiousNames = identity.ReligiousNames
	}
	if fields[scope.FieldGenderIdentity] {
		out.GenderIdentity = identity.GenderIdentity
	}
	if fields[scope.FieldCustomGenderDesc] {
		out.CustomGenderDescription = identity.CustomGenderDesc
	}
	if fields[scope.FieldPronouns] {
		out.Pronouns = identity.Pronouns
	}
	if fields[scope.FieldDateOfBirth] {
		out.DateOfBirth = identity.DateOfBirth
	}
	if fields[scope.FieldLocation] {
		out.Location = identity.Location
	}
	if fields[scope.FieldContactDetails] {
		out.ContactDetails = identity.ContactDetails
	}
	if fields[scope.FieldOnlinePresence] {
		out.OnlinePresence = identity.OnlinePresence
	}
	if fields[scope.FieldWebsiteURLs] {
		out.WebsiteURLs = identity.WebsiteURLs
	}
	if fields[scope.FieldAdditionalAttrs] {
		out.AdditionalAttributes = identity.AdditionalAttributes
	}

	return out
}

// publicSafeView is the fixed reduced view served to authenticated users who
// are not the owner (AUTHENTICATED_USERS tier). Not scope-driven: the field
// set is part of the product contract.
func publicSafeView(identity *repository.Identity) *ProjectedIdentity {
	return &ProjectedIdentity{
		ID:                      identity.ID,
		OwnerID:                 identity.UserID,
		Visibility:              identity.Visibility,
		IdentityLabel:           identity.Label,
		ProfilePictureURL:       identity.ProfilePictureURL,
		Description:             identity.Description,
		Category:                identity.Category,
		CustomCategoryName:      identity.CustomCategoryName,
		GenderIdentity:          identity.GenderIdentity,
		CustomGenderDescription: identity.CustomGenderDesc,
		Pronouns:                identity.Pronouns,
		Location:                identity.Location,
		WebsiteURLs:             identity.WebsiteURLs,
	}
}

// stubView builds the non-revealing placeholder for private/app-specific
// identities. The real label and picture never leave this function's inputs.
func stubView(identity *repository.Identity) *IdentityStub {
	label := StubLabelPrivate
	if identity.Visibility == repository.VisibilityAppSpecific {
		label = StubLabelRestricted
	}
	return &IdentityStub{
		ID:                 identity.ID,
		Visibility:         identity.Visibility,
		Category:           identity.Category,
		CustomCategoryName: identity.CustomCategoryName,
		IdentityLabel:      label,
		ProfilePictureURL:  StubPlaceholderImage,
	}
}
