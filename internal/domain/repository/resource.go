package repository

import (
	"context"
	"time"
)

// Resource representa una API protegida registrada en el servidor de
// autorización. El indicator es la URI con la que los clients la piden
// (parámetro `resource` de RFC 8707).
type Resource struct {
	ID        string
	Indicator string
	Name      string
	CreatedAt time.Time
}

// ResourceRepository define operaciones de lectura sobre resources.
type ResourceRepository interface {
	// GetByIndicator busca un resource por su indicator.
	// Retorna ErrNotFound si no existe.
	GetByIndicator(ctx context.Context, indicator string) (*Resource, error)

	// GetByID busca un resource por ID.
	GetByID(ctx context.Context, id string) (*Resource, error)

	// List lista todos los resources registrados.
	List(ctx context.Context) ([]Resource, error)
}
