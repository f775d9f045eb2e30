// Package interaction contiene los services del flujo de interacción de
// consentimiento.
package interaction

import (
	provider "github.com/dropDatabas3/consentd/internal/interaction"
	"github.com/dropDatabas3/consentd/internal/store"
)

// Deps contiene las dependencias para crear los services de interacción.
type Deps struct {
	Queries  store.Queries
	Provider provider.Provider

	// ScopeResolution habilita el filtrado de missing scopes contra los
	// permisos reales del usuario antes de enriquecer.
	ScopeResolution bool
}

// Services agrupa todos los services del dominio de interacción.
type Services struct {
	Consent ConsentService
}

// NewServices crea el agregador de services de interacción.
func NewServices(d Deps) Services {
	return Services{
		Consent: NewConsentService(d),
	}
}
