package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/consentd/internal/consent"
	"github.com/dropDatabas3/consentd/internal/domain/repository"
	dto "github.com/dropDatabas3/consentd/internal/http/dto/interaction"
	provider "github.com/dropDatabas3/consentd/internal/interaction"
	"github.com/dropDatabas3/consentd/internal/metrics"
	"github.com/dropDatabas3/consentd/internal/observability/logger"
	"github.com/dropDatabas3/consentd/internal/store"
	"github.com/dropDatabas3/consentd/internal/validation"
)

// Errors
var (
	ErrSessionNotFound       = provider.ErrSessionNotFound
	ErrInvalidClient         = errors.New("invalid_client")
	ErrInvalidRedirectURI    = errors.New("invalid_redirect_uri")
	ErrInvalidOrganizationID = errors.New("invalid organization id")
)

// ConsentService assembles the consent payload for an in-progress interaction
// and processes the user's decision.
type ConsentService interface {
	// Info builds the merged consent payload (read path).
	Info(ctx context.Context, d *provider.Details) (*dto.ConsentInfoResponse, error)

	// Submit validates membership, persists organization grants and finalizes
	// the interaction (write path).
	Submit(ctx context.Context, d *provider.Details, req dto.ConsentSubmitRequest) (*dto.ConsentSubmitResponse, error)
}

type consentService struct {
	queries  store.Queries
	provider provider.Provider

	resolver   *consent.ScopeResolver
	enricher   *consent.Enricher
	membership *consent.MembershipValidator

	scopeResolution bool
}

// NewConsentService crea el orquestador de consentimiento.
func NewConsentService(d Deps) ConsentService {
	return &consentService{
		queries:         d.Queries,
		provider:        d.Provider,
		resolver:        consent.NewScopeResolver(d.Queries),
		enricher:        consent.NewEnricher(d.Queries),
		membership:      consent.NewMembershipValidator(d.Queries),
		scopeResolution: d.ScopeResolution,
	}
}

// checkPreconditions valida sesión, client_id y redirect_uri de la interacción.
func checkPreconditions(d *provider.Details, requireRedirect bool) error {
	if d == nil || d.Session == nil || d.Session.AccountID == "" {
		return ErrSessionNotFound
	}
	if d.Params.ClientID == "" {
		return ErrInvalidClient
	}
	if requireRedirect && d.Params.RedirectURI == "" {
		return ErrInvalidRedirectURI
	}
	return nil
}

// Info implements the read path: application + user identity, filtered OIDC
// scopes, enriched missing resource scopes globally and per organization.
func (s *consentService) Info(ctx context.Context, d *provider.Details) (*dto.ConsentInfoResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("interaction.consent.info"))

	if err := checkPreconditions(d, true); err != nil {
		return nil, err
	}
	userID := d.Session.AccountID

	// Identidades: app, override de sign-in experience y perfil, en paralelo.
	var (
		app  *repository.Application
		sie  *repository.SignInExperience
		user *repository.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.queries.Applications().GetByID(gctx, d.Params.ClientID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrInvalidClient
			}
			return fmt.Errorf("cargando application %s: %w", d.Params.ClientID, err)
		}
		app = a
		return nil
	})
	g.Go(func() error {
		o, err := s.queries.SignInExperiences().GetByApplication(gctx, d.Params.ClientID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil // sin override, caso normal
			}
			return fmt.Errorf("cargando sign-in experience de %s: %w", d.Params.ClientID, err)
		}
		sie = o
		return nil
	})
	g.Go(func() error {
		u, err := s.queries.Users().GetByID(gctx, userID)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("cargando user %s: %w", userID, err)
		}
		user = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := promptEntries(d.Prompt)

	global, err := s.missingResourceScopes(ctx, entries, userID, "")
	if err != nil {
		return nil, err
	}

	organizations, err := s.organizationEntries(ctx, d.Prompt.MissingOIDCScope, entries, userID)
	if err != nil {
		return nil, err
	}

	res := &dto.ConsentInfoResponse{
		Application:           dto.MergeApplication(app, sie),
		User:                  dto.UserView{ID: user.ID, Name: user.Name, Email: user.Email, Picture: user.Picture},
		Organizations:         organizations,
		MissingOIDCScope:      consent.VisibleOIDCScopes(d.Prompt.MissingOIDCScope),
		MissingResourceScopes: global,
		RedirectURI:           d.Params.RedirectURI,
	}

	log.Debug("consent payload assembled",
		logger.UserID(userID),
		logger.ApplicationID(app.ID),
		logger.Count(len(global)),
	)
	return res, nil
}

// Submit implements the write path. All-or-nothing: membership failure
// persists nothing and does not advance the interaction.
func (s *consentService) Submit(ctx context.Context, d *provider.Details, req dto.ConsentSubmitRequest) (*dto.ConsentSubmitResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("interaction.consent.submit"))

	if len(req.OrganizationIDs) > 0 {
		if err := checkPreconditions(d, false); err != nil {
			return nil, err
		}
		for _, id := range req.OrganizationIDs {
			if !validation.ValidEntityID(id) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidOrganizationID, id)
			}
		}

		userID := d.Session.AccountID
		if err := s.membership.AssertMembership(ctx, userID, req.OrganizationIDs); err != nil {
			metrics.ConsentDecisions.WithLabelValues("membership_rejected").Inc()
			return nil, err
		}

		now := time.Now().UTC()
		grants := make([]repository.OrganizationGrant, 0, len(req.OrganizationIDs))
		for _, orgID := range req.OrganizationIDs {
			grants = append(grants, repository.OrganizationGrant{
				ID:             uuid.NewString(),
				ApplicationID:  d.Params.ClientID,
				UserID:         userID,
				OrganizationID: orgID,
				GrantedAt:      now,
			})
		}
		if err := s.queries.Grants().InsertBatch(ctx, grants); err != nil {
			return nil, fmt.Errorf("persistiendo grants: %w", err)
		}
		metrics.GrantsInserted.Add(float64(len(grants)))
		log.Info("organization grants persisted",
			logger.UserID(userID),
			logger.ApplicationID(d.Params.ClientID),
			logger.Count(len(grants)),
		)
	} else if d == nil {
		return nil, ErrSessionNotFound
	}

	redirectTo, err := s.provider.FinalizeConsent(ctx, d, req.OrganizationIDs)
	if err != nil {
		return nil, err
	}
	metrics.ConsentDecisions.WithLabelValues("accepted").Inc()

	return &dto.ConsentSubmitResponse{RedirectTo: redirectTo}, nil
}

// promptEntries convierte el mapping del prompt al tipo del núcleo.
func promptEntries(p provider.Prompt) []consent.ResourceScopes {
	entries := make([]consent.ResourceScopes, 0, len(p.MissingResourceScopes))
	for _, rs := range p.MissingResourceScopes {
		entries = append(entries, consent.ResourceScopes{Indicator: rs.Indicator, Scopes: rs.Scopes})
	}
	return entries
}

// missingResourceScopes filtra (si la capability está habilitada) y enriquece
// las entradas para el usuario, con o sin contexto de organización.
func (s *consentService) missingResourceScopes(ctx context.Context, entries []consent.ResourceScopes, userID, organizationID string) ([]consent.MissingResourceScopes, error) {
	if s.scopeResolution {
		filtered, err := s.resolver.Filter(ctx, entries, userID, organizationID)
		if err != nil {
			return nil, err
		}
		entries = filtered
	}
	return s.enricher.Enrich(ctx, entries)
}

// organizationEntries arma la lista de organizaciones del usuario. Solo se
// puebla cuando el scope "organizations" está pendiente de consentimiento.
func (s *consentService) organizationEntries(ctx context.Context, oidcScopes []string, entries []consent.ResourceScopes, userID string) ([]dto.OrganizationEntry, error) {
	if !consent.IncludesOrganizations(oidcScopes) {
		return []dto.OrganizationEntry{}, nil
	}

	orgs, err := s.queries.Organizations().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listando organizaciones de %s: %w", userID, err)
	}

	out := make([]dto.OrganizationEntry, len(orgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, org := range orgs {
		out[i] = dto.OrganizationEntry{ID: org.ID, Name: org.Name}
		if !s.scopeResolution {
			continue
		}
		i, org := i, org
		g.Go(func() error {
			missing, err := s.missingResourceScopes(gctx, entries, userID, org.ID)
			if err != nil {
				return err
			}
			out[i].MissingResourceScopes = missing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
