package repository

import (
	"context"
	"time"
)

// Scope representa un permiso que pertenece a exactamente un resource.
type Scope struct {
	ID          string
	ResourceID  string
	Name        string
	Description string
	CreatedAt   time.Time
}

// OrganizationScope representa un permiso del pseudo-resource reservado de
// organizaciones. No pertenece a ningún resource real: se busca solo por nombre.
type OrganizationScope struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// ScopeRepository define operaciones sobre scopes de resources.
type ScopeRepository interface {
	// GetByNameAndResource busca un scope por nombre dentro de un resource.
	// Retorna ErrNotFound si no existe.
	GetByNameAndResource(ctx context.Context, name, resourceID string) (*Scope, error)

	// ListByResource lista los scopes que posee un resource.
	ListByResource(ctx context.Context, resourceID string) ([]Scope, error)

	// ListUserScopeNames retorna los nombres de scopes que el resource otorga
	// directamente al usuario (permisos personales, sin contexto de organización).
	ListUserScopeNames(ctx context.Context, resourceID, userID string) ([]string, error)
}

// OrganizationScopeRepository define operaciones sobre organization scopes.
type OrganizationScopeRepository interface {
	// GetByName busca un organization scope por nombre.
	// Retorna ErrNotFound si no existe.
	GetByName(ctx context.Context, name string) (*OrganizationScope, error)

	// List lista todos los organization scopes.
	List(ctx context.Context) ([]OrganizationScope, error)

	// ListUserScopeNames retorna los nombres de organization scopes que el
	// usuario posee vía sus roles de organización. Si organizationID es vacío,
	// considera todas las organizaciones del usuario.
	ListUserScopeNames(ctx context.Context, userID, organizationID string) ([]string, error)
}
