package interaction_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dropDatabas3/consentd/internal/consent"
	"github.com/dropDatabas3/consentd/internal/domain/repository"
	dto "github.com/dropDatabas3/consentd/internal/http/dto/interaction"
	svc "github.com/dropDatabas3/consentd/internal/http/services/interaction"
	provider "github.com/dropDatabas3/consentd/internal/interaction"
	"github.com/dropDatabas3/consentd/internal/store/memory"
)

// fakeProvider finaliza siempre con una resume URI fija.
type fakeProvider struct {
	redirectTo string
	finalized  int
}

func (f *fakeProvider) Details(_ context.Context, _ *http.Request) (*provider.Details, error) {
	return nil, provider.ErrSessionNotFound
}

func (f *fakeProvider) FinalizeConsent(_ context.Context, _ *provider.Details, _ []string) (string, error) {
	f.finalized++
	return f.redirectTo, nil
}

func seedStore() *memory.Store {
	s := memory.New()

	s.AddApplication(repository.Application{ID: "app-1", Name: "Demo App", Description: "A demo"})
	s.AddUser(repository.User{ID: "user-1", Email: "ana@example.com", Name: "Ana", Picture: "https://cdn.example.com/ana.png"})

	s.AddResource(repository.Resource{ID: "res-api", Indicator: "https://api.example.com", Name: "Example API"})
	s.AddScope(repository.Scope{ID: "sc-read", ResourceID: "res-api", Name: "read", Description: "Read access"})
	s.AddScope(repository.Scope{ID: "sc-write", ResourceID: "res-api", Name: "write"})

	s.AddOrganizationScope(repository.OrganizationScope{ID: "os-members", Name: "members:read"})

	s.AddOrganization(repository.Organization{ID: "org-1", Name: "Acme"})
	s.AddOrganization(repository.Organization{ID: "org-2", Name: "Globex"})
	s.AddMembership("user-1", "org-1")

	s.GrantUserScope("user-1", "sc-read")
	s.GrantOrganizationUserScope("org-1", "user-1", "sc-write")
	s.GrantOrganizationUserOrganizationScope("org-1", "user-1", "os-members")

	return s
}

func newService(t *testing.T, s *memory.Store, scopeResolution bool) (svc.ConsentService, *fakeProvider) {
	t.Helper()
	fp := &fakeProvider{redirectTo: "https://idp.example.com/resume/abc"}
	services := svc.NewServices(svc.Deps{
		Queries:         s,
		Provider:        fp,
		ScopeResolution: scopeResolution,
	})
	return services.Consent, fp
}

func details() *provider.Details {
	return &provider.Details{
		ID:      "itx-1",
		Session: &provider.Session{AccountID: "user-1"},
		Params:  provider.Params{ClientID: "app-1", RedirectURI: "https://app.example.com/cb"},
		Prompt: provider.Prompt{
			MissingOIDCScope: []string{"openid", "profile", "offline_access", "organizations"},
			MissingResourceScopes: []provider.ResourceScopes{
				{Indicator: "https://api.example.com", Scopes: []string{"read", "write"}},
			},
		},
		ResumeURI: "https://idp.example.com/resume/abc",
	}
}

func TestInfo_NeverSurfacesReservedOIDCScopes(t *testing.T) {
	service, _ := newService(t, seedStore(), false)

	res, err := service.Info(context.Background(), details())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, sc := range res.MissingOIDCScope {
		if sc == "openid" || sc == "offline_access" {
			t.Fatalf("reserved scope %q surfaced", sc)
		}
	}
	if len(res.MissingOIDCScope) != 2 {
		t.Fatalf("expected [profile organizations], got %v", res.MissingOIDCScope)
	}
}

func TestInfo_Preconditions(t *testing.T) {
	service, _ := newService(t, seedStore(), false)
	ctx := context.Background()

	d := details()
	d.Session = nil
	if _, err := service.Info(ctx, d); !errors.Is(err, svc.ErrSessionNotFound) {
		t.Fatalf("missing session: got %v", err)
	}

	d = details()
	d.Params.ClientID = ""
	if _, err := service.Info(ctx, d); !errors.Is(err, svc.ErrInvalidClient) {
		t.Fatalf("missing client_id: got %v", err)
	}

	d = details()
	d.Params.RedirectURI = ""
	if _, err := service.Info(ctx, d); !errors.Is(err, svc.ErrInvalidRedirectURI) {
		t.Fatalf("missing redirect_uri: got %v", err)
	}
}

func TestInfo_UnresolvedScopeNamesAreDropped(t *testing.T) {
	service, _ := newService(t, seedStore(), false)

	d := details()
	d.Prompt.MissingResourceScopes = []provider.ResourceScopes{
		{Indicator: "https://api.example.com", Scopes: []string{"read", "ghost"}},
	}
	res, err := service.Info(context.Background(), d)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(res.MissingResourceScopes) != 1 || len(res.MissingResourceScopes[0].Scopes) != 1 {
		t.Fatalf("expected only resolved scope, got %+v", res.MissingResourceScopes)
	}
	if res.MissingResourceScopes[0].Scopes[0].Name != "read" {
		t.Fatalf("got %+v", res.MissingResourceScopes[0].Scopes)
	}

	// Si ningún scope del resource resuelve, el resource desaparece.
	d.Prompt.MissingResourceScopes = []provider.ResourceScopes{
		{Indicator: "https://api.example.com", Scopes: []string{"ghost"}},
	}
	res, err = service.Info(context.Background(), d)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(res.MissingResourceScopes) != 0 {
		t.Fatalf("expected resource absent, got %+v", res.MissingResourceScopes)
	}
}

func TestInfo_UnknownOrganizationScopeIsInvalidTarget(t *testing.T) {
	service, _ := newService(t, seedStore(), false)

	d := details()
	d.Prompt.MissingResourceScopes = []provider.ResourceScopes{
		{Indicator: consent.OrganizationsIndicator, Scopes: []string{"ghost:scope"}},
	}
	_, err := service.Info(context.Background(), d)
	if !errors.Is(err, consent.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestInfo_OrganizationsOnlyWhenScopeMissing(t *testing.T) {
	service, _ := newService(t, seedStore(), false)
	ctx := context.Background()

	res, err := service.Info(ctx, details())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(res.Organizations) != 1 || res.Organizations[0].ID != "org-1" {
		t.Fatalf("expected user's organization, got %+v", res.Organizations)
	}

	d := details()
	d.Prompt.MissingOIDCScope = []string{"openid", "profile"}
	res, err = service.Info(ctx, d)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(res.Organizations) != 0 {
		t.Fatalf("expected empty organizations, got %+v", res.Organizations)
	}
}

func TestInfo_ScopeResolutionFiltersPerContext(t *testing.T) {
	service, _ := newService(t, seedStore(), true)

	res, err := service.Info(context.Background(), details())
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	// Global: solo "read" es un permiso directo del usuario.
	if len(res.MissingResourceScopes) != 1 || len(res.MissingResourceScopes[0].Scopes) != 1 ||
		res.MissingResourceScopes[0].Scopes[0].Name != "read" {
		t.Fatalf("global filter: got %+v", res.MissingResourceScopes)
	}

	// org-1: "write" llega vía rol de la organización.
	if len(res.Organizations) != 1 {
		t.Fatalf("organizations: %+v", res.Organizations)
	}
	org := res.Organizations[0]
	if len(org.MissingResourceScopes) != 1 || org.MissingResourceScopes[0].Scopes[0].Name != "write" {
		t.Fatalf("org breakdown: got %+v", org.MissingResourceScopes)
	}
}

func TestInfo_FlagOffSkipsFilterAndOrgBreakdowns(t *testing.T) {
	service, _ := newService(t, seedStore(), false)

	res, err := service.Info(context.Background(), details())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	// Sin filtro: "write" pasa aunque el usuario no lo tenga directo.
	if len(res.MissingResourceScopes) != 1 || len(res.MissingResourceScopes[0].Scopes) != 2 {
		t.Fatalf("raw pass-through: got %+v", res.MissingResourceScopes)
	}
	if res.Organizations[0].MissingResourceScopes != nil {
		t.Fatalf("expected bare org entry, got %+v", res.Organizations[0])
	}
}

func TestInfo_SignInExperienceOverrideWins(t *testing.T) {
	s := seedStore()
	s.SetSignInExperience(repository.SignInExperience{
		ApplicationID: "app-1",
		DisplayName:   "Demo (Branded)",
		LogoURL:       "https://cdn.example.com/logo.png",
	})
	service, _ := newService(t, s, false)

	res, err := service.Info(context.Background(), details())
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if res.Application.Name != "Demo (Branded)" || res.Application.LogoURL != "https://cdn.example.com/logo.png" {
		t.Fatalf("override not applied: %+v", res.Application)
	}
	if res.Application.ID != "app-1" || res.Application.Description != "A demo" {
		t.Fatalf("base fields lost: %+v", res.Application)
	}
}

func TestSubmit_MembershipFailurePersistsNothing(t *testing.T) {
	s := seedStore()
	service, fp := newService(t, s, false)

	_, err := service.Submit(context.Background(), details(), dto.ConsentSubmitRequest{
		OrganizationIDs: []string{"org-1", "org-2"},
	})
	if !errors.Is(err, consent.ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}

	grants, err := s.Grants().ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected zero grants, got %d", len(grants))
	}
	if fp.finalized != 0 {
		t.Fatal("interaction advanced despite membership failure")
	}
}

func TestSubmit_PersistsOneTuplePerOrganization(t *testing.T) {
	s := seedStore()
	service, fp := newService(t, s, false)

	res, err := service.Submit(context.Background(), details(), dto.ConsentSubmitRequest{
		OrganizationIDs: []string{"org-1"},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.RedirectTo != "https://idp.example.com/resume/abc" {
		t.Fatalf("redirectTo = %q", res.RedirectTo)
	}
	if fp.finalized != 1 {
		t.Fatalf("finalize calls = %d", fp.finalized)
	}

	grants, err := s.Grants().ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected one grant, got %d", len(grants))
	}
	g := grants[0]
	if g.ApplicationID != "app-1" || g.UserID != "user-1" || g.OrganizationID != "org-1" {
		t.Fatalf("wrong tuple: %+v", g)
	}
}

func TestSubmit_IsIdempotentPerTuple(t *testing.T) {
	s := seedStore()
	service, _ := newService(t, s, false)
	ctx := context.Background()

	req := dto.ConsentSubmitRequest{OrganizationIDs: []string{"org-1"}}
	if _, err := service.Submit(ctx, details(), req); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := service.Submit(ctx, details(), req); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	grants, err := s.Grants().ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list grants: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("duplicate tuple persisted: %d grants", len(grants))
	}
}

func TestSubmit_EmptyOrganizationsStillFinalizes(t *testing.T) {
	service, fp := newService(t, seedStore(), false)

	res, err := service.Submit(context.Background(), details(), dto.ConsentSubmitRequest{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.RedirectTo == "" || fp.finalized != 1 {
		t.Fatalf("expected finalize with redirect, got %+v (calls=%d)", res, fp.finalized)
	}
}

func TestSubmit_RejectsMalformedOrganizationID(t *testing.T) {
	service, _ := newService(t, seedStore(), false)

	_, err := service.Submit(context.Background(), details(), dto.ConsentSubmitRequest{
		OrganizationIDs: []string{"org 1!"},
	})
	if !errors.Is(err, svc.ErrInvalidOrganizationID) {
		t.Fatalf("expected ErrInvalidOrganizationID, got %v", err)
	}
}
