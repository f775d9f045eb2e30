package repository

import (
	"context"
	"time"
)

// OrganizationGrant es la tupla persistida "este application puede actuar
// dentro de esta organización en nombre de este usuario". Append-only: se
// inserta, nunca se muta.
type OrganizationGrant struct {
	ID             string
	ApplicationID  string
	UserID         string
	OrganizationID string
	GrantedAt      time.Time
}

// GrantRepository define operaciones sobre organization grants.
type GrantRepository interface {
	// InsertBatch inserta un lote de grants de forma atómica: o entran todos
	// o ninguno. Tuplas duplicadas son no-op (idempotente).
	InsertBatch(ctx context.Context, grants []OrganizationGrant) error

	// ListByUser lista los grants de un usuario.
	ListByUser(ctx context.Context, userID string) ([]OrganizationGrant, error)

	// ListByApplication lista los grants de un application.
	ListByApplication(ctx context.Context, applicationID string) ([]OrganizationGrant, error)

	// Delete elimina un grant por ID.
	// Retorna ErrNotFound si no existe.
	Delete(ctx context.Context, id string) error
}
