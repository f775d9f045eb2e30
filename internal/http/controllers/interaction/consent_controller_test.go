package interaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/consentd/internal/cache"
	"github.com/dropDatabas3/consentd/internal/domain/repository"
	ctrl "github.com/dropDatabas3/consentd/internal/http/controllers/interaction"
	dto "github.com/dropDatabas3/consentd/internal/http/dto/interaction"
	svc "github.com/dropDatabas3/consentd/internal/http/services/interaction"
	provider "github.com/dropDatabas3/consentd/internal/interaction"
	"github.com/dropDatabas3/consentd/internal/store/memory"
)

type fixture struct {
	store      *memory.Store
	provider   *provider.CacheProvider
	controller *ctrl.ConsentController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memory.New()
	s.AddApplication(repository.Application{ID: "app-1", Name: "Demo App"})
	s.AddUser(repository.User{ID: "user-1", Email: "ana@example.com", Name: "Ana"})
	s.AddResource(repository.Resource{ID: "res-api", Indicator: "https://api.example.com", Name: "Example API"})
	s.AddScope(repository.Scope{ID: "sc-read", ResourceID: "res-api", Name: "read"})
	s.AddOrganization(repository.Organization{ID: "org-1", Name: "Acme"})
	s.AddMembership("user-1", "org-1")

	c, err := cache.New(cache.Config{Kind: "memory"})
	require.NoError(t, err)
	p := provider.NewCacheProvider(c, "_interaction", []byte("test-signing-key-0123456789abcdef"), 10*time.Minute)

	services := svc.NewServices(svc.Deps{Queries: s, Provider: p})
	controllers := ctrl.NewControllers(services, p)

	return &fixture{store: s, provider: p, controller: controllers.Consent}
}

func (f *fixture) newInteraction(t *testing.T) *http.Cookie {
	t.Helper()
	d := &provider.Details{
		Session: &provider.Session{AccountID: "user-1"},
		Params:  provider.Params{ClientID: "app-1", RedirectURI: "https://app.example.com/cb"},
		Prompt: provider.Prompt{
			MissingOIDCScope: []string{"openid", "profile", "organizations"},
			MissingResourceScopes: []provider.ResourceScopes{
				{Indicator: "https://api.example.com", Scopes: []string{"read"}},
			},
		},
		ResumeURI: "https://idp.example.com/resume/abc",
	}
	cookieValue, err := f.provider.Create(context.Background(), d)
	require.NoError(t, err)
	return f.provider.Cookie(cookieValue)
}

func TestConsentController_Info(t *testing.T) {
	f := newFixture(t)
	cookie := f.newInteraction(t)

	r := httptest.NewRequest(http.MethodGet, "/interaction/consent", nil)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	f.controller.Info(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res dto.ConsentInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "app-1", res.Application.ID)
	require.Equal(t, "user-1", res.User.ID)
	require.Equal(t, "https://app.example.com/cb", res.RedirectURI)
	require.NotContains(t, res.MissingOIDCScope, "openid")
}

func TestConsentController_Info_NoCookie(t *testing.T) {
	f := newFixture(t)

	r := httptest.NewRequest(http.MethodGet, "/interaction/consent", nil)
	w := httptest.NewRecorder()

	f.controller.Info(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}

func TestConsentController_Submit(t *testing.T) {
	f := newFixture(t)
	cookie := f.newInteraction(t)

	body := strings.NewReader(`{"organizationIds":["org-1"]}`)
	r := httptest.NewRequest(http.MethodPost, "/interaction/consent", body)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	f.controller.Submit(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res dto.ConsentSubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Equal(t, "https://idp.example.com/resume/abc", res.RedirectTo)

	grants, err := f.store.Grants().ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	require.Equal(t, "org-1", grants[0].OrganizationID)
}

func TestConsentController_Submit_NotMember(t *testing.T) {
	f := newFixture(t)
	cookie := f.newInteraction(t)

	body := strings.NewReader(`{"organizationIds":["org-ghost"]}`)
	r := httptest.NewRequest(http.MethodPost, "/interaction/consent", body)
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	f.controller.Submit(w, r)

	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	grants, err := f.store.Grants().ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Empty(t, grants)
}

func TestConsentController_Submit_EmptyBody(t *testing.T) {
	f := newFixture(t)
	cookie := f.newInteraction(t)

	r := httptest.NewRequest(http.MethodPost, "/interaction/consent", strings.NewReader(""))
	r.AddCookie(cookie)
	w := httptest.NewRecorder()

	f.controller.Submit(w, r)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
