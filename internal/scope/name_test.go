package scope

import (
	"strings"
	"testing"
)

func TestValidName_Valid(t *testing.T) {
	valids := []string{
		"a",
		"ab",
		"profile",
		"profile:label",
		"identity.read",
		"a_b-c.d:scope2",
		"a" + strings.Repeat("b", 62) + "c", // exactly 64
	}
	for _, v := range valids {
		if !ValidName(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
}

func TestValidName_Invalid(t *testing.T) {
	invalids := []string{
		"",
		":lead",
		"trail:",
		"bad space",
		"UPPER",
		"semicolon;hack",
		strings.Repeat("a", 65),
	}
	for _, v := range invalids {
		if ValidName(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}
