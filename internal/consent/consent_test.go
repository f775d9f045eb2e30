package consent_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dropDatabas3/consentd/internal/consent"
	"github.com/dropDatabas3/consentd/internal/domain/repository"
	"github.com/dropDatabas3/consentd/internal/store/memory"
)

// newFixture seeds a memory store with one API resource, organization scopes,
// two organizations and one user with mixed direct and role-based grants.
func newFixture() *memory.Store {
	s := memory.New()

	s.AddResource(repository.Resource{ID: "res-api", Indicator: "https://api.example.com", Name: "Example API"})
	s.AddScope(repository.Scope{ID: "sc-read", ResourceID: "res-api", Name: "read", Description: "Read access"})
	s.AddScope(repository.Scope{ID: "sc-write", ResourceID: "res-api", Name: "write", Description: "Write access"})
	s.AddScope(repository.Scope{ID: "sc-admin", ResourceID: "res-api", Name: "admin"})

	s.AddOrganizationScope(repository.OrganizationScope{ID: "os-members", Name: "members:read", Description: "List members"})
	s.AddOrganizationScope(repository.OrganizationScope{ID: "os-billing", Name: "billing:manage"})

	s.AddUser(repository.User{ID: "user-1", Email: "ana@example.com", Name: "Ana"})

	s.AddOrganization(repository.Organization{ID: "org-1", Name: "Acme"})
	s.AddOrganization(repository.Organization{ID: "org-2", Name: "Globex"})
	s.AddMembership("user-1", "org-1")

	// Direct grant: read only. Through org-1 roles: write. Org scope via org-1.
	s.GrantUserScope("user-1", "sc-read")
	s.GrantOrganizationUserScope("org-1", "user-1", "sc-write")
	s.GrantOrganizationUserOrganizationScope("org-1", "user-1", "os-members")

	return s
}

func TestVisibleOIDCScopes_HidesReserved(t *testing.T) {
	got := consent.VisibleOIDCScopes([]string{"openid", "profile", "offline_access", "organizations"})
	want := []string{"profile", "organizations"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := consent.VisibleOIDCScopes([]string{"openid"}); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestClassify_PartitionsReservedIndicator(t *testing.T) {
	entries := []consent.ResourceScopes{
		{Indicator: "https://a.example.com", Scopes: []string{"read"}},
		{Indicator: consent.OrganizationsIndicator, Scopes: []string{"members:read"}},
		{Indicator: "https://b.example.com", Scopes: []string{"write"}},
	}
	orgScopes, resources := consent.Classify(entries)
	if !reflect.DeepEqual(orgScopes, []string{"members:read"}) {
		t.Fatalf("org scopes: got %v", orgScopes)
	}
	if len(resources) != 2 || resources[0].Indicator != "https://a.example.com" || resources[1].Indicator != "https://b.example.com" {
		t.Fatalf("resources out of order: %v", resources)
	}
}

func TestResolveScopes_DirectVsOrganizationContext(t *testing.T) {
	s := newFixture()
	r := consent.NewScopeResolver(s)
	ctx := context.Background()

	direct, err := r.ResolveScopes(ctx, "https://api.example.com", "user-1", "")
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	if !reflect.DeepEqual(direct, []string{"read"}) {
		t.Fatalf("direct: got %v", direct)
	}

	viaOrg, err := r.ResolveScopes(ctx, "https://api.example.com", "user-1", "org-1")
	if err != nil {
		t.Fatalf("org context: %v", err)
	}
	if !reflect.DeepEqual(viaOrg, []string{"write"}) {
		t.Fatalf("org context: got %v", viaOrg)
	}
}

func TestResolveScopes_UnknownIndicatorIsEmptyNotError(t *testing.T) {
	s := newFixture()
	r := consent.NewScopeResolver(s)

	got, err := r.ResolveScopes(context.Background(), "https://nope.example.com", "user-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no scopes, got %v", got)
	}
}

func TestResolveScopes_OrganizationsNamespace(t *testing.T) {
	s := newFixture()
	r := consent.NewScopeResolver(s)

	got, err := r.ResolveScopes(context.Background(), consent.OrganizationsIndicator, "user-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"members:read"}) {
		t.Fatalf("got %v", got)
	}
}

func TestFilter_IntersectsAndDropsEmptyEntries(t *testing.T) {
	s := newFixture()
	r := consent.NewScopeResolver(s)

	entries := []consent.ResourceScopes{
		// "write" is only granted through org-1; with no org context it drops.
		{Indicator: "https://api.example.com", Scopes: []string{"read", "write"}},
		{Indicator: "https://nope.example.com", Scopes: []string{"anything"}},
	}
	got, err := r.Filter(context.Background(), entries, "user-1", "")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	want := []consent.ResourceScopes{{Indicator: "https://api.example.com", Scopes: []string{"read"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	// With the org context the intersection changes accordingly.
	got, err = r.Filter(context.Background(), entries, "user-1", "org-1")
	if err != nil {
		t.Fatalf("filter org: %v", err)
	}
	want = []consent.ResourceScopes{{Indicator: "https://api.example.com", Scopes: []string{"write"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("org context: got %v, want %v", got, want)
	}
}

func TestEnrich_ResolvesAndPreservesOrder(t *testing.T) {
	s := newFixture()
	e := consent.NewEnricher(s)

	entries := []consent.ResourceScopes{
		{Indicator: consent.OrganizationsIndicator, Scopes: []string{"members:read"}},
		{Indicator: "https://api.example.com", Scopes: []string{"write", "read"}},
	}
	got, err := e.Enrich(context.Background(), entries)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Resource.ID != consent.OrganizationsIndicator || got[0].Scopes[0].ID != "os-members" {
		t.Fatalf("organizations record malformed: %+v", got[0])
	}
	if got[1].Resource.ID != "res-api" || got[1].Resource.Name != "Example API" {
		t.Fatalf("resource record malformed: %+v", got[1])
	}
	if got[1].Scopes[0].Name != "write" || got[1].Scopes[1].Name != "read" {
		t.Fatalf("scope order not preserved: %+v", got[1].Scopes)
	}
}

func TestEnrich_SilentlyDropsUnresolvedScopeNames(t *testing.T) {
	s := newFixture()
	e := consent.NewEnricher(s)

	entries := []consent.ResourceScopes{
		{Indicator: "https://api.example.com", Scopes: []string{"read", "ghost"}},
	}
	got, err := e.Enrich(context.Background(), entries)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(got) != 1 || len(got[0].Scopes) != 1 || got[0].Scopes[0].Name != "read" {
		t.Fatalf("expected only resolved scope, got %+v", got)
	}
}

func TestEnrich_DropsRecordWhenNoScopeResolves(t *testing.T) {
	s := newFixture()
	e := consent.NewEnricher(s)

	entries := []consent.ResourceScopes{
		{Indicator: "https://api.example.com", Scopes: []string{"ghost"}},
	}
	got, err := e.Enrich(context.Background(), entries)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected resource absent, got %+v", got)
	}
}

func TestEnrich_UnknownResourceIsInvalidTarget(t *testing.T) {
	s := newFixture()
	e := consent.NewEnricher(s)

	_, err := e.Enrich(context.Background(), []consent.ResourceScopes{
		{Indicator: "https://nope.example.com", Scopes: []string{"read"}},
	})
	if !errors.Is(err, consent.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestEnrich_UnknownOrganizationScopeIsInvalidTarget(t *testing.T) {
	s := newFixture()
	e := consent.NewEnricher(s)

	_, err := e.Enrich(context.Background(), []consent.ResourceScopes{
		{Indicator: consent.OrganizationsIndicator, Scopes: []string{"ghost:scope"}},
	})
	if !errors.Is(err, consent.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestAssertMembership_AllOrNothing(t *testing.T) {
	s := newFixture()
	v := consent.NewMembershipValidator(s)
	ctx := context.Background()

	if err := v.AssertMembership(ctx, "user-1", []string{"org-1"}); err != nil {
		t.Fatalf("member of org-1: %v", err)
	}
	if err := v.AssertMembership(ctx, "user-1", nil); err != nil {
		t.Fatalf("empty set: %v", err)
	}

	err := v.AssertMembership(ctx, "user-1", []string{"org-1", "org-2"})
	if !errors.Is(err, consent.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestMissingResourceScopes_Validate(t *testing.T) {
	ok := consent.MissingResourceScopes{
		Resource: consent.ResourceInfo{ID: "r", Name: "R"},
		Scopes:   []consent.ScopeInfo{{ID: "s", Name: "read"}},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	bad := consent.MissingResourceScopes{Resource: consent.ResourceInfo{ID: "r", Name: "R"}}
	if err := bad.Validate(); err == nil {
		t.Fatal("empty scopes accepted")
	}
}
