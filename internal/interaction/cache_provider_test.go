package interaction_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/consentd/internal/cache"
	"github.com/dropDatabas3/consentd/internal/interaction"
)

func newProvider(t *testing.T) *interaction.CacheProvider {
	t.Helper()
	c, err := cache.New(cache.Config{Kind: "memory"})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	return interaction.NewCacheProvider(c, "_interaction", []byte("test-signing-key-0123456789abcdef"), 10*time.Minute)
}

func TestCacheProvider_CreateThenDetails(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	d := &interaction.Details{
		Session:   &interaction.Session{AccountID: "user-1"},
		Params:    interaction.Params{ClientID: "app-1", RedirectURI: "https://app.example.com/cb"},
		Prompt:    interaction.Prompt{MissingOIDCScope: []string{"openid", "profile"}},
		ResumeURI: "https://idp.example.com/resume/abc",
	}
	cookieValue, err := p.Create(ctx, d)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ID == "" {
		t.Fatal("create did not assign an id")
	}

	r := httptest.NewRequest("GET", "/interaction/consent", nil)
	r.AddCookie(p.Cookie(cookieValue))

	got, err := p.Details(ctx, r)
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if got.ID != d.ID || got.Session == nil || got.Session.AccountID != "user-1" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.Params.ClientID != "app-1" {
		t.Fatalf("params lost: %+v", got.Params)
	}
}

func TestCacheProvider_MissingCookieIsSessionNotFound(t *testing.T) {
	p := newProvider(t)
	r := httptest.NewRequest("GET", "/interaction/consent", nil)

	_, err := p.Details(context.Background(), r)
	if !errors.Is(err, interaction.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCacheProvider_TamperedCookieIsSessionNotFound(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	cookieValue, err := p.Create(ctx, &interaction.Details{Params: interaction.Params{ClientID: "app-1"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	r := httptest.NewRequest("GET", "/interaction/consent", nil)
	r.AddCookie(p.Cookie(cookieValue + "x"))

	_, err = p.Details(ctx, r)
	if !errors.Is(err, interaction.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCacheProvider_FinalizeConsentReturnsResumeURI(t *testing.T) {
	p := newProvider(t)
	ctx := context.Background()

	d := &interaction.Details{
		Session:   &interaction.Session{AccountID: "user-1"},
		Params:    interaction.Params{ClientID: "app-1", RedirectURI: "https://app.example.com/cb"},
		ResumeURI: "https://idp.example.com/resume/abc",
	}
	if _, err := p.Create(ctx, d); err != nil {
		t.Fatalf("create: %v", err)
	}

	redirectTo, err := p.FinalizeConsent(ctx, d, []string{"org-1"})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if redirectTo != "https://idp.example.com/resume/abc" {
		t.Fatalf("redirectTo = %q", redirectTo)
	}
}
