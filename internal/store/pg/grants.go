package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

type grantRepo struct {
	pool *pgxpool.Pool
}

// InsertBatch inserta el lote dentro de una transacción: o entran todos o
// ninguno. El índice único (application_id, user_id, organization_id) hace que
// las tuplas repetidas sean no-op vía ON CONFLICT DO NOTHING.
func (r *grantRepo) InsertBatch(ctx context.Context, grants []repository.OrganizationGrant) error {
	if len(grants) == 0 {
		return nil
	}

	const q = `
		INSERT INTO organization_grants (id, application_id, user_id, organization_id, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (application_id, user_id, organization_id) DO NOTHING`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, g := range grants {
		batch.Queue(q, g.ID, g.ApplicationID, g.UserID, g.OrganizationID, g.GrantedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for range grants {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *grantRepo) ListByUser(ctx context.Context, userID string) ([]repository.OrganizationGrant, error) {
	const q = `
		SELECT id, application_id, user_id, organization_id, granted_at
		FROM organization_grants
		WHERE user_id = $1
		ORDER BY granted_at DESC`

	return r.list(ctx, q, userID)
}

func (r *grantRepo) ListByApplication(ctx context.Context, applicationID string) ([]repository.OrganizationGrant, error) {
	const q = `
		SELECT id, application_id, user_id, organization_id, granted_at
		FROM organization_grants
		WHERE application_id = $1
		ORDER BY granted_at DESC`

	return r.list(ctx, q, applicationID)
}

func (r *grantRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM organization_grants WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *grantRepo) list(ctx context.Context, q string, arg any) ([]repository.OrganizationGrant, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.OrganizationGrant
	for rows.Next() {
		var g repository.OrganizationGrant
		if err := rows.Scan(&g.ID, &g.ApplicationID, &g.UserID, &g.OrganizationID, &g.GrantedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
