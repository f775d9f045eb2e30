package consent

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/consentd/internal/store"
)

// MembershipValidator asserts organization membership before a grant can be
// persisted. All-or-nothing: one missing membership fails the whole set.
type MembershipValidator struct {
	queries store.Queries
}

// NewMembershipValidator crea el validator sobre el agregado de repositorios.
func NewMembershipValidator(queries store.Queries) *MembershipValidator {
	return &MembershipValidator{queries: queries}
}

// AssertMembership fails with ErrNotMember unless the user is currently a
// member of every organization in organizationIDs. Duplicates are tolerated.
func (v *MembershipValidator) AssertMembership(ctx context.Context, userID string, organizationIDs []string) error {
	if len(organizationIDs) == 0 {
		return nil
	}

	unique := make([]string, 0, len(organizationIDs))
	seen := make(map[string]bool, len(organizationIDs))
	for _, id := range organizationIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	member, err := v.queries.Organizations().FilterUserMemberships(ctx, userID, unique)
	if err != nil {
		return fmt.Errorf("membership: filtrando membresías de %s: %w", userID, err)
	}

	isMember := make(map[string]bool, len(member))
	for _, id := range member {
		isMember[id] = true
	}
	var missing []string
	for _, id := range unique {
		if !isMember[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNotMember, strings.Join(missing, ", "))
	}
	return nil
}
