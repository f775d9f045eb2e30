package consent

// Classify partitions a raw missing-scope mapping into the reserved
// organizations pseudo-resource versus genuine resource indicators.
// Pure partition: it does not validate that any indicator exists (the
// enricher does), and preserves the input order of the resource entries.
func Classify(entries []ResourceScopes) (organizationScopes []string, resources []ResourceScopes) {
	resources = make([]ResourceScopes, 0, len(entries))
	for _, e := range entries {
		if e.Indicator == OrganizationsIndicator {
			organizationScopes = append(organizationScopes, e.Scopes...)
			continue
		}
		resources = append(resources, e)
	}
	return organizationScopes, resources
}
