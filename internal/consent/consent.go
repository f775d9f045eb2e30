// Package consent contiene el núcleo de resolución de consentimiento OIDC:
// clasificación de missing scopes, filtrado por membresía, enriquecimiento
// contra persistencia y validación de membresía organizacional.
package consent

import "errors"

// Reserved names of the organizations namespace.
const (
	// OrganizationsIndicator is the reserved resource indicator meaning
	// "the organizations pseudo-resource". Scope names under it resolve
	// against the organization-scope namespace, never against a real resource.
	OrganizationsIndicator = "urn:consentd:resource:organizations"

	// ScopeOrganizations is the OIDC scope that unlocks the organization
	// selection step of the consent flow.
	ScopeOrganizations = "organizations"

	// ScopeOpenID and ScopeOfflineAccess are protocol-reserved and implicit:
	// they never need explicit user consent and are never surfaced.
	ScopeOpenID        = "openid"
	ScopeOfflineAccess = "offline_access"
)

// Core errors. Los controllers los mapean a errores de protocolo.
var (
	// ErrInvalidTarget: a resource indicator or organization-scope name from
	// the prompt does not exist in persistence. Upstream asserted it does, so
	// this is a should-not-happen contract violation, fatal to the request.
	ErrInvalidTarget = errors.New("invalid_target")

	// ErrNotMember: the user is not a member of one of the requested
	// organizations. All-or-nothing, no partial grants.
	ErrNotMember = errors.New("organization_membership_required")
)

// ResourceScopes is one entry of the prompt's missing-scope mapping:
// a resource indicator plus the scope names still missing for it.
// A slice keeps the prompt's iteration order, which the output must preserve.
type ResourceScopes struct {
	Indicator string
	Scopes    []string
}

// MissingScopes is the classified missing-scope data of an in-progress
// interaction: flat OIDC scope names plus per-indicator resource scopes.
type MissingScopes struct {
	OIDCScope      []string
	ResourceScopes []ResourceScopes
}

// VisibleOIDCScopes filters out the protocol-reserved scopes that must never
// reach the consent UI. Always returns a non-nil slice.
func VisibleOIDCScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s == ScopeOpenID || s == ScopeOfflineAccess {
			continue
		}
		out = append(out, s)
	}
	return out
}

// IncludesOrganizations reporta si el scope "organizations" está entre los
// OIDC scopes pendientes.
func IncludesOrganizations(scopes []string) bool {
	for _, s := range scopes {
		if s == ScopeOrganizations {
			return true
		}
	}
	return false
}
