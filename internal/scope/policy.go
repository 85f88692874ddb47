// Package scope defines the scope identifiers apps can be granted and the
// static mapping from each scope to the identity fields it discloses.
//
// The table is hand-written on purpose: scopes are a public contract with
// third-party apps and must stay stable independent of internal schema
// changes. Never derive it from the Identity struct reflectively.
package scope

// Scope identifiers.
const (
	ProfileLabel        = "profile:label"
	ProfileDescription  = "profile:description"
	ProfileCategory     = "profile:category"
	ProfileNameDetails  = "profile:name_details"
	ProfileContactInfo  = "profile:contact_details"
	ProfilePersonalInfo = "profile:personal_info"
	ProfileAdditional   = "profile:additional_attributes"
	IdentityRead        = "identity.read" // minimum bar for app API access
)

// Wire-level field names, as exposed in projected payloads.
const (
	FieldLabel              = "identityLabel"
	FieldProfilePictureURL  = "profilePictureUrl"
	FieldDescription        = "description"
	FieldCategory           = "category"
	FieldCustomCategoryName = "customCategoryName"
	FieldNameDetails        = "nameDetails"
	FieldNameHistory        = "nameHistory"
	FieldReligiousNames     = "religiousNames"
	FieldGenderIdentity     = "genderIdentity"
	FieldCustomGenderDesc   = "customGenderDescription"
	FieldPronouns           = "pronouns"
	FieldDateOfBirth        = "dateOfBirth"
	FieldLocation           = "location"
	FieldContactDetails     = "contactDetails"
	FieldOnlinePresence     = "onlinePresence"
	FieldWebsiteURLs        = "websiteUrls"
	FieldAdditionalAttrs    = "additionalAttributes"
)

// policyTable maps each scope to the fields it unlocks. identity.read unlocks
// no field by itself; it only opens the basic profile tier.
var policyTable = map[string][]string{
	ProfileLabel:        {FieldLabel},
	ProfileDescription:  {FieldDescription},
	ProfileCategory:     {FieldCategory, FieldCustomCategoryName},
	ProfileNameDetails:  {FieldNameDetails, FieldNameHistory, FieldReligiousNames},
	ProfilePersonalInfo: {FieldGenderIdentity, FieldCustomGenderDesc, FieldPronouns, FieldDateOfBirth, FieldLocation},
	ProfileContactInfo:  {FieldContactDetails, FieldOnlinePresence, FieldWebsiteURLs},
	ProfileAdditional:   {FieldAdditionalAttrs},
	IdentityRead:        {},
}

// basicFields are disclosed whenever at least one recognized scope is granted,
// regardless of which one. This is the "basic profile" tier.
var basicFields = []string{FieldLabel, FieldProfilePictureURL}

// Known returns true if s is a recognized scope.
func Known(s string) bool {
	_, ok := policyTable[s]
	return ok
}

// All returns every recognized scope, for validation and consent screens.
func All() []string {
	out := make([]string, 0, len(policyTable))
	for s := range policyTable {
		out = append(out, s)
	}
	return out
}

// FieldsFor returns the set of fields unlocked by granted. Unknown scopes are
// silently ignored (safe default: they disclose nothing). If at least one
// scope is recognized the basic profile tier is included.
func FieldsFor(granted []string) map[string]bool {
	fields := make(map[string]bool)
	recognized := false
	for _, s := range granted {
		mapped, ok := policyTable[s]
		if !ok {
			continue
		}
		recognized = true
		for _, f := range mapped {
			fields[f] = true
		}
	}
	if recognized {
		for _, f := range basicFields {
			fields[f] = true
		}
	}
	return fields
}
