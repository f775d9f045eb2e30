// Package interaction contains controllers for the consent interaction flow.
package interaction

import (
	svc "github.com/dropDatabas3/consentd/internal/http/services/interaction"
	provider "github.com/dropDatabas3/consentd/internal/interaction"
)

// Controllers agrupa todos los controllers del dominio de interacción.
type Controllers struct {
	Consent *ConsentController
}

// NewControllers creates the interaction controllers aggregator.
func NewControllers(s svc.Services, p provider.Provider) *Controllers {
	return &Controllers{
		Consent: NewConsentController(s.Consent, p),
	}
}
