package consent

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
	"github.com/dropDatabas3/consentd/internal/store"
)

// ScopeResolver resolves which scope names a resource actually grants a user,
// optionally within an organization context. Used to filter the prompt's raw
// missing-scope names down to ones applicable to the current membership,
// protecting against stale or organization-irrelevant requests leaking into
// the consent prompt.
type ScopeResolver struct {
	queries store.Queries
}

// NewScopeResolver crea el resolver sobre el agregado de repositorios.
func NewScopeResolver(queries store.Queries) *ScopeResolver {
	return &ScopeResolver{queries: queries}
}

// ResolveScopes returns the scope names the resource behind indicator grants
// the user. With an empty organizationID it returns direct (personal) grants;
// otherwise, the grants flowing through that organization's roles. An unknown
// indicator resolves to no scopes — not an error at this stage.
func (r *ScopeResolver) ResolveScopes(ctx context.Context, indicator, userID, organizationID string) ([]string, error) {
	if indicator == OrganizationsIndicator {
		names, err := r.queries.OrganizationScopes().ListUserScopeNames(ctx, userID, organizationID)
		if err != nil {
			return nil, fmt.Errorf("resolver: organization scopes de usuario %s: %w", userID, err)
		}
		return names, nil
	}

	res, err := r.queries.Resources().GetByIndicator(ctx, indicator)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolver: resource %s: %w", indicator, err)
	}

	var names []string
	if organizationID == "" {
		names, err = r.queries.Scopes().ListUserScopeNames(ctx, res.ID, userID)
	} else {
		names, err = r.queries.Organizations().ListUserResourceScopeNames(ctx, organizationID, userID, res.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("resolver: scopes de usuario %s en %s: %w", userID, indicator, err)
	}
	return names, nil
}

// Filter intersects each entry's requested scope names with the ones the
// resolver grants the user in the given context, dropping entries left empty.
// Entry order and per-entry name order follow the input.
func (r *ScopeResolver) Filter(ctx context.Context, entries []ResourceScopes, userID, organizationID string) ([]ResourceScopes, error) {
	out := make([]ResourceScopes, 0, len(entries))
	for _, e := range entries {
		granted, err := r.ResolveScopes(ctx, e.Indicator, userID, organizationID)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]bool, len(granted))
		for _, name := range granted {
			allowed[name] = true
		}
		kept := make([]string, 0, len(e.Scopes))
		for _, name := range e.Scopes {
			if allowed[name] {
				kept = append(kept, name)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, ResourceScopes{Indicator: e.Indicator, Scopes: kept})
	}
	return out, nil
}
