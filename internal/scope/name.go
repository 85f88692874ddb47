package scope

import "regexp"

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
//
// Examples valid: profile, profile:label, identity.read, a_b-c.d:scope2
// Examples invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var nameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidName returns true if the scope name matches the allowed pattern.
// This is syntactic validation only; Known decides whether a scope actually
// discloses anything.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}
