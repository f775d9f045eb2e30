package repository

import (
	"context"
	"time"
)

// Application representa el client OAuth que pide consentimiento.
type Application struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// SignInExperience es el override de branding opcional por application.
// Si existe, sus campos pisan los del application en la vista pública.
type SignInExperience struct {
	ApplicationID string
	DisplayName   string
	LogoURL       string
	TermsURL      string
	PrivacyURL    string
}

// ApplicationRepository define operaciones de lectura sobre applications.
type ApplicationRepository interface {
	// GetByID busca un application por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Application, error)
}

// SignInExperienceRepository define operaciones sobre overrides de branding.
type SignInExperienceRepository interface {
	// GetByApplication busca el override de un application.
	// Retorna ErrNotFound si el application no tiene override (caso normal).
	GetByApplication(ctx context.Context, applicationID string) (*SignInExperience, error)
}
