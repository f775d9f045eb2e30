// Package cache provee abstracciones para caching con soporte multi-backend.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// El estado de interacción de autorización se guarda acá (interaction:{id}).
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound indica que la key no existe o expiró.
var ErrNotFound = errors.New("cache: key not found")

// Client define las operaciones de cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL opcional. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key.
	Delete(ctx context.Context, key string) error

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	// Kind: "memory" | "redis"
	Kind string

	// Redis
	Addr     string
	Password string
	DB       int
	Prefix   string

	// Memory
	DefaultTTL time.Duration
}

// New crea un cliente según Config.Kind.
func New(cfg Config) (Client, error) {
	switch cfg.Kind {
	case "", "memory":
		return NewMemory(cfg.Prefix, cfg.DefaultTTL), nil
	case "redis":
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("cache: kind desconocido: %q", cfg.Kind)
	}
}
