package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	const q = `
		SELECT id, email, name, COALESCE(picture, ''), COALESCE(password_hash, ''), created_at
		FROM users
		WHERE id = $1`

	var u repository.User
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type applicationRepo struct {
	pool *pgxpool.Pool
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*repository.Application, error) {
	const q = `
		SELECT id, name, COALESCE(description, ''), created_at
		FROM applications
		WHERE id = $1`

	var a repository.Application
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type signInExperienceRepo struct {
	pool *pgxpool.Pool
}

func (r *signInExperienceRepo) GetByApplication(ctx context.Context, applicationID string) (*repository.SignInExperience, error) {
	const q = `
		SELECT application_id, COALESCE(display_name, ''), COALESCE(logo_url, ''),
		       COALESCE(terms_url, ''), COALESCE(privacy_url, '')
		FROM sign_in_experiences
		WHERE application_id = $1`

	var sie repository.SignInExperience
	err := r.pool.QueryRow(ctx, q, applicationID).
		Scan(&sie.ApplicationID, &sie.DisplayName, &sie.LogoURL, &sie.TermsURL, &sie.PrivacyURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sie, nil
}
