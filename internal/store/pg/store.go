// Package pg implementa los repositorios de dominio sobre PostgreSQL.
// Usa pgxpool directamente; el schema vive en migrations/postgres.
package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

// Config configura el pool de conexiones.
type Config struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// Store agrupa los repositorios PostgreSQL sobre un pool compartido.
type Store struct {
	pool *pgxpool.Pool

	resources          *resourceRepo
	scopes             *scopeRepo
	organizationScopes *organizationScopeRepo
	organizations      *organizationRepo
	users              *userRepo
	applications       *applicationRepo
	signInExperiences  *signInExperienceRepo
	grants             *grantRepo
}

// New crea el Store y verifica la conexión.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	} else {
		poolCfg.MinConns = 2
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	s := &Store{pool: pool}
	s.resources = &resourceRepo{pool: pool}
	s.scopes = &scopeRepo{pool: pool}
	s.organizationScopes = &organizationScopeRepo{pool: pool}
	s.organizations = &organizationRepo{pool: pool}
	s.users = &userRepo{pool: pool}
	s.applications = &applicationRepo{pool: pool}
	s.signInExperiences = &signInExperienceRepo{pool: pool}
	s.grants = &grantRepo{pool: pool}
	return s, nil
}

func (s *Store) Resources() repository.ResourceRepository { return s.resources }
func (s *Store) Scopes() repository.ScopeRepository       { return s.scopes }
func (s *Store) OrganizationScopes() repository.OrganizationScopeRepository {
	return s.organizationScopes
}
func (s *Store) Organizations() repository.OrganizationRepository { return s.organizations }
func (s *Store) Users() repository.UserRepository                 { return s.users }
func (s *Store) Applications() repository.ApplicationRepository   { return s.applications }
func (s *Store) SignInExperiences() repository.SignInExperienceRepository {
	return s.signInExperiences
}
func (s *Store) Grants() repository.GrantRepository { return s.grants }

// Pool expone el pool subyacente para instrumentación (métricas).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
