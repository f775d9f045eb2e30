package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

type resourceRepo struct {
	pool *pgxpool.Pool
}

func (r *resourceRepo) GetByIndicator(ctx context.Context, indicator string) (*repository.Resource, error) {
	const q = `
		SELECT id, indicator, name, created_at
		FROM resources
		WHERE indicator = $1`

	var res repository.Resource
	err := r.pool.QueryRow(ctx, q, indicator).Scan(&res.ID, &res.Indicator, &res.Name, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepo) GetByID(ctx context.Context, id string) (*repository.Resource, error) {
	const q = `
		SELECT id, indicator, name, created_at
		FROM resources
		WHERE id = $1`

	var res repository.Resource
	err := r.pool.QueryRow(ctx, q, id).Scan(&res.ID, &res.Indicator, &res.Name, &res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resourceRepo) List(ctx context.Context) ([]repository.Resource, error) {
	const q = `
		SELECT id, indicator, name, created_at
		FROM resources
		ORDER BY indicator`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Resource
	for rows.Next() {
		var res repository.Resource
		if err := rows.Scan(&res.ID, &res.Indicator, &res.Name, &res.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
