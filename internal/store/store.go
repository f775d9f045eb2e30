// Package store es el punto de entrada para acceso a datos.
//
// Expone Queries: un agregado de repositorios por entidad (contratos en
// internal/domain/repository). Las implementaciones concretas viven en
// store/pg (producción) y store/memory (dev/testing).
package store

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
	"github.com/dropDatabas3/consentd/internal/store/memory"
	"github.com/dropDatabas3/consentd/internal/store/pg"
)

// Queries agrupa todos los repositorios del servicio.
type Queries interface {
	Resources() repository.ResourceRepository
	Scopes() repository.ScopeRepository
	OrganizationScopes() repository.OrganizationScopeRepository
	Organizations() repository.OrganizationRepository
	Users() repository.UserRepository
	Applications() repository.ApplicationRepository
	SignInExperiences() repository.SignInExperienceRepository
	Grants() repository.GrantRepository

	// Ping verifica la conexión al backend.
	Ping(ctx context.Context) error

	// Close cierra las conexiones.
	Close() error
}

// Config selecciona e inicializa el backend.
type Config struct {
	// Driver: "postgres" | "memory"
	Driver string
	DSN    string

	MaxOpenConns int
	MaxIdleConns int
}

// New crea el Queries según el driver configurado.
func New(ctx context.Context, cfg Config) (Queries, error) {
	switch cfg.Driver {
	case "postgres":
		return pg.New(ctx, pg.Config{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		})
	case "", "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("store: driver desconocido: %q", cfg.Driver)
	}
}
