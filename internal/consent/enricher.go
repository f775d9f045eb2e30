package consent

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
	"github.com/dropDatabas3/consentd/internal/metrics"
	"github.com/dropDatabas3/consentd/internal/observability/logger"
	"github.com/dropDatabas3/consentd/internal/store"
)

// ResourceInfo identifica el resource de un registro enriquecido.
type ResourceInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScopeInfo es un scope resuelto, apto para mostrar en la UI de consentimiento.
type ScopeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MissingResourceScopes agrupa los scopes pendientes de un resource ya
// resueltos contra persistencia. Efímero: se arma por request y se descarta.
type MissingResourceScopes struct {
	Resource ResourceInfo `json:"resource"`
	Scopes   []ScopeInfo  `json:"scopes"`
}

// Validate checks the record against its output contract. A violation here is
// an internal fault (the enricher assembled something malformed), never a
// user-facing error.
func (m MissingResourceScopes) Validate() error {
	if m.Resource.ID == "" || m.Resource.Name == "" {
		return fmt.Errorf("missing resource scopes: resource incompleto (id=%q, name=%q)", m.Resource.ID, m.Resource.Name)
	}
	if len(m.Scopes) == 0 {
		return fmt.Errorf("missing resource scopes: lista de scopes vacía para %s", m.Resource.ID)
	}
	for _, s := range m.Scopes {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("missing resource scopes: scope incompleto (id=%q, name=%q) en %s", s.ID, s.Name, m.Resource.ID)
		}
	}
	return nil
}

// Enricher resolves classified missing-scope entries into full resource and
// scope records. The asymmetry is deliberate: an unresolvable indicator or
// organization-scope name is fatal (invalid target, upstream asserted it
// exists), while a scope name that does not resolve within a valid resource
// is dropped and surfaced only through logs and metrics.
type Enricher struct {
	queries store.Queries
}

// NewEnricher crea el enricher sobre el agregado de repositorios.
func NewEnricher(queries store.Queries) *Enricher {
	return &Enricher{queries: queries}
}

// Enrich resolves every entry concurrently. Output order matches input order;
// entries whose scopes all failed to resolve are absent from the result.
func (e *Enricher) Enrich(ctx context.Context, entries []ResourceScopes) ([]MissingResourceScopes, error) {
	if len(entries) == 0 {
		return []MissingResourceScopes{}, nil
	}

	slots := make([]*MissingResourceScopes, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			rec, err := e.enrichOne(gctx, entry)
			if err != nil {
				return err
			}
			slots[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]MissingResourceScopes, 0, len(entries))
	for _, rec := range slots {
		if rec == nil {
			continue
		}
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// enrichOne resuelve una entrada. Retorna (nil, nil) si ningún scope resolvió.
func (e *Enricher) enrichOne(ctx context.Context, entry ResourceScopes) (*MissingResourceScopes, error) {
	if entry.Indicator == OrganizationsIndicator {
		return e.enrichOrganizations(ctx, entry.Scopes)
	}

	res, err := e.queries.Resources().GetByIndicator(ctx, entry.Indicator)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: resource %s", ErrInvalidTarget, entry.Indicator)
		}
		return nil, fmt.Errorf("enricher: resource %s: %w", entry.Indicator, err)
	}

	scopes := make([]ScopeInfo, 0, len(entry.Scopes))
	for _, name := range entry.Scopes {
		sc, err := e.queries.Scopes().GetByNameAndResource(ctx, name, res.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				// Should not happen under normal operation; tolerated,
				// surfaced as anomaly.
				logger.From(ctx).Warn("scope name no resuelve dentro del resource, descartado",
					logger.Layer("consent"),
					logger.Indicator(entry.Indicator),
					logger.ScopeName(name),
				)
				metrics.ScopeResolutionAnomalies.WithLabelValues("unresolved_scope_name").Inc()
				continue
			}
			return nil, fmt.Errorf("enricher: scope %s de %s: %w", name, entry.Indicator, err)
		}
		scopes = append(scopes, ScopeInfo{ID: sc.ID, Name: sc.Name, Description: sc.Description})
	}
	if len(scopes) == 0 {
		return nil, nil
	}
	return &MissingResourceScopes{
		Resource: ResourceInfo{ID: res.ID, Name: res.Name},
		Scopes:   scopes,
	}, nil
}

// enrichOrganizations resuelve nombres contra el namespace de organization
// scopes. Acá un nombre desconocido sí es fatal.
func (e *Enricher) enrichOrganizations(ctx context.Context, names []string) (*MissingResourceScopes, error) {
	scopes := make([]ScopeInfo, 0, len(names))
	for _, name := range names {
		sc, err := e.queries.OrganizationScopes().GetByName(ctx, name)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("%w: organization scope %s", ErrInvalidTarget, name)
			}
			return nil, fmt.Errorf("enricher: organization scope %s: %w", name, err)
		}
		scopes = append(scopes, ScopeInfo{ID: sc.ID, Name: sc.Name, Description: sc.Description})
	}
	if len(scopes) == 0 {
		return nil, nil
	}
	return &MissingResourceScopes{
		Resource: ResourceInfo{ID: OrganizationsIndicator, Name: ScopeOrganizations},
		Scopes:   scopes,
	}, nil
}
