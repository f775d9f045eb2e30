package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

type organizationRepo struct {
	pool *pgxpool.Pool
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (*repository.Organization, error) {
	const q = `
		SELECT id, name, created_at
		FROM organizations
		WHERE id = $1`

	var org repository.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepo) ListByUser(ctx context.Context, userID string) ([]repository.Organization, error) {
	const q = `
		SELECT o.id, o.name, o.created_at
		FROM organizations o
		JOIN organization_memberships om ON om.organization_id = o.id
		WHERE om.user_id = $1
		ORDER BY o.name`

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Organization
	for rows.Next() {
		var org repository.Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, org)
	}
	return out, rows.Err()
}

func (r *organizationRepo) FilterUserMemberships(ctx context.Context, userID string, organizationIDs []string) ([]string, error) {
	if len(organizationIDs) == 0 {
		return nil, nil
	}
	const q = `
		SELECT organization_id
		FROM organization_memberships
		WHERE user_id = $1 AND organization_id = ANY($2)`

	return scanNames(r.pool, ctx, q, userID, organizationIDs)
}

func (r *organizationRepo) ListUserResourceScopeNames(ctx context.Context, organizationID, userID, resourceID string) ([]string, error) {
	const q = `
		SELECT DISTINCT s.name
		FROM scopes s
		JOIN organization_role_resource_scopes orrs ON orrs.scope_id = s.id
		JOIN organization_user_roles our ON our.role_id = orrs.role_id
		WHERE our.organization_id = $1
		  AND our.user_id = $2
		  AND s.resource_id = $3
		ORDER BY s.name`

	return scanNames(r.pool, ctx, q, organizationID, userID, resourceID)
}
