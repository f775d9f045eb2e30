package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

type scopeRepo struct {
	pool *pgxpool.Pool
}

func (r *scopeRepo) GetByNameAndResource(ctx context.Context, name, resourceID string) (*repository.Scope, error) {
	const q = `
		SELECT id, resource_id, name, description, created_at
		FROM scopes
		WHERE name = $1 AND resource_id = $2`

	var s repository.Scope
	err := r.pool.QueryRow(ctx, q, name, resourceID).
		Scan(&s.ID, &s.ResourceID, &s.Name, &s.Description, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scopeRepo) ListByResource(ctx context.Context, resourceID string) ([]repository.Scope, error) {
	const q = `
		SELECT id, resource_id, name, description, created_at
		FROM scopes
		WHERE resource_id = $1
		ORDER BY name`

	rows, err := r.pool.Query(ctx, q, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Scope
	for rows.Next() {
		var s repository.Scope
		if err := rows.Scan(&s.ID, &s.ResourceID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *scopeRepo) ListUserScopeNames(ctx context.Context, resourceID, userID string) ([]string, error) {
	const q = `
		SELECT s.name
		FROM scopes s
		JOIN user_resource_scopes urs ON urs.scope_id = s.id
		WHERE s.resource_id = $1 AND urs.user_id = $2
		ORDER BY s.name`

	return scanNames(r.pool, ctx, q, resourceID, userID)
}

type organizationScopeRepo struct {
	pool *pgxpool.Pool
}

func (r *organizationScopeRepo) GetByName(ctx context.Context, name string) (*repository.OrganizationScope, error) {
	const q = `
		SELECT id, name, description, created_at
		FROM organization_scopes
		WHERE name = $1`

	var s repository.OrganizationScope
	err := r.pool.QueryRow(ctx, q, name).Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *organizationScopeRepo) List(ctx context.Context) ([]repository.OrganizationScope, error) {
	const q = `
		SELECT id, name, description, created_at
		FROM organization_scopes
		ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.OrganizationScope
	for rows.Next() {
		var s repository.OrganizationScope
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *organizationScopeRepo) ListUserScopeNames(ctx context.Context, userID, organizationID string) ([]string, error) {
	// organizationID vacío = todas las organizaciones del usuario.
	const q = `
		SELECT DISTINCT os.name
		FROM organization_scopes os
		JOIN organization_role_scopes ors ON ors.organization_scope_id = os.id
		JOIN organization_user_roles our ON our.role_id = ors.role_id
		WHERE our.user_id = $1
		  AND ($2 = '' OR our.organization_id = $2)
		ORDER BY os.name`

	return scanNames(r.pool, ctx, q, userID, organizationID)
}

// scanNames ejecuta una query que retorna una sola columna de nombres.
func scanNames(pool *pgxpool.Pool, ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
