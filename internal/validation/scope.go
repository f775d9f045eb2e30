package validation

import "regexp"

// Scope name rules:
// - Lowercase only.
// - Start and end with [a-z0-9].
// - Middle chars may include [a-z0-9:_.-].
// - Length 1..64.
// - Excludes semicolon and whitespace explicitly.
//
// Examples valid: profile, read:data, organizations, a_b-c.d:scope2
// Examples invalid: ;hack, BAD, bad space, :leader, trailer:, "", 65+ chars.
var scopeNameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9:_\.-]{0,62}[a-z0-9])?$`)

// ValidScopeName returns true if the provided scope name matches the allowed pattern.
func ValidScopeName(name string) bool {
	return scopeNameRe.MatchString(name)
}

// Entity IDs (users, organizations, applications, grants) are opaque strings:
// alphanumeric plus "-" and "_", 1..128 chars. Covers UUIDs and short ids.
var entityIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidEntityID returns true if the provided id matches the allowed pattern.
func ValidEntityID(id string) bool {
	return entityIDRe.MatchString(id)
}
