package scope

import "testing"

func TestFieldsFor_EmptyGrant(t *testing.T) {
	fields := FieldsFor(nil)
	if len(fields) != 0 {
		t.Fatalf("expected no fields for empty grant, got %v", fields)
	}
}

func TestFieldsFor_UnknownScopesIgnored(t *testing.T) {
	fields := FieldsFor([]string{"profile:does_not_exist", "admin:everything"})
	if len(fields) != 0 {
		t.Fatalf("unknown scopes must disclose nothing, got %v", fields)
	}
}

func TestFieldsFor_BasicTier(t *testing.T) {
	// Any recognized scope opens the basic tier, even identity.read which
	// maps to no field of its own.
	for _, s := range []string{IdentityRead, ProfileDescription, ProfilePersonalInfo} {
		fields := FieldsFor([]string{s})
		if !fields[FieldLabel] || !fields[FieldProfilePictureURL] {
			t.Fatalf("scope %q: basic tier (label+picture) missing: %v", s, fields)
		}
	}
}

func TestFieldsFor_SpecificScopes(t *testing.T) {
	fields := FieldsFor([]string{ProfileLabel, ProfilePersonalInfo})

	for _, want := range []string{
		FieldLabel, FieldProfilePictureURL,
		FieldGenderIdentity, FieldCustomGenderDesc, FieldPronouns, FieldDateOfBirth, FieldLocation,
	} {
		if !fields[want] {
			t.Errorf("expected field %q unlocked", want)
		}
	}
	for _, deny := range []string{FieldContactDetails, FieldAdditionalAttrs, FieldDescription, FieldNameHistory} {
		if fields[deny] {
			t.Errorf("field %q must not be unlocked", deny)
		}
	}
}

// Monotonicity: granting more scopes never removes fields.
func TestFieldsFor_Monotonic(t *testing.T) {
	subset := []string{ProfileLabel}
	superset := []string{ProfileLabel, ProfileContactInfo, ProfileAdditional}

	small := FieldsFor(subset)
	big := FieldsFor(superset)
	for f := range small {
		if !big[f] {
			t.Fatalf("field %q lost when granting a superset of scopes", f)
		}
	}
}

func TestAll_CoversTable(t *testing.T) {
	all := All()
	if len(all) != len(policyTable) {
		t.Fatalf("All() returned %d scopes, table has %d", len(all), len(policyTable))
	}
	for _, s := range all {
		if !Known(s) {
			t.Fatalf("All() returned unknown scope %q", s)
		}
	}
}
