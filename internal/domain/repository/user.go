package repository

import (
	"context"
	"time"
)

// User representa la identidad autenticada dueña de la interacción.
// PasswordHash vive en el data plane del IdP; nunca sale por la API.
type User struct {
	ID           string
	Email        string
	Name         string
	Picture      string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository define operaciones de lectura sobre usuarios.
type UserRepository interface {
	// GetByID busca un usuario por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*User, error)
}
