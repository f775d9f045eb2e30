package repository

import (
	"context"
	"time"
)

// Organization representa una organización: la unidad contra la que se otorga
// consentimiento organization-scoped. Relación many-to-many con usuarios.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// OrganizationRepository define operaciones sobre organizaciones y membresías.
type OrganizationRepository interface {
	// GetByID busca una organización por ID.
	GetByID(ctx context.Context, id string) (*Organization, error)

	// ListByUser lista las organizaciones de las que el usuario es miembro.
	ListByUser(ctx context.Context, userID string) ([]Organization, error)

	// FilterUserMemberships retorna el subconjunto de organizationIDs de los
	// que el usuario es actualmente miembro. No es un error que el resultado
	// sea más chico que la entrada; eso lo decide el caller.
	FilterUserMemberships(ctx context.Context, userID string, organizationIDs []string) ([]string, error)

	// ListUserResourceScopeNames retorna los nombres de scopes que el resource
	// otorga al usuario a través de los roles que tiene asignados en la
	// organización dada.
	ListUserResourceScopeNames(ctx context.Context, organizationID, userID, resourceID string) ([]string, error)
}
