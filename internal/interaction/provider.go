// Package interaction modela al colaborador de autorización: el estado opaco
// de la interacción en curso (sesión, params, prompt) y la operación de
// finalizar consentimiento. El orquestador de consent depende solo del
// contrato Provider; la implementación concreta vive en cache_provider.go.
package interaction

import (
	"context"
	"errors"
	"net/http"
)

// Provider errors. Los controllers los mapean a errores de protocolo.
var (
	// ErrSessionNotFound: no hay interacción en curso asociada al request, o
	// la que hay no tiene sesión autenticada.
	ErrSessionNotFound = errors.New("session_not_found")
)

// Session es la sesión autenticada de la interacción.
type Session struct {
	AccountID string `json:"accountId"`
}

// Params son los parámetros de autorización de la interacción.
type Params struct {
	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
}

// ResourceScopes es una entrada del mapping indicator → scope names del
// prompt. Slice para preservar el orden de iteración del prompt.
type ResourceScopes struct {
	Indicator string   `json:"indicator"`
	Scopes    []string `json:"scopes"`
}

// Prompt describe qué le falta consentir al usuario en esta interacción.
type Prompt struct {
	MissingOIDCScope      []string         `json:"missingOIDCScope"`
	MissingResourceScopes []ResourceScopes `json:"missingResourceScopes"`
}

// Details es el estado de la interacción en curso.
type Details struct {
	ID        string   `json:"id"`
	Session   *Session `json:"session,omitempty"`
	Params    Params   `json:"params"`
	Prompt    Prompt   `json:"prompt"`
	ResumeURI string   `json:"resumeUri"`

	// ConsentedOrganizationIDs se completa al finalizar el consentimiento.
	ConsentedOrganizationIDs []string `json:"consentedOrganizationIds,omitempty"`
}

// Provider es el contrato del colaborador de autorización.
type Provider interface {
	// Details carga el estado de la interacción asociada al request.
	// Retorna ErrSessionNotFound si no hay interacción.
	Details(ctx context.Context, r *http.Request) (*Details, error)

	// FinalizeConsent marca la interacción como consentida (incluyendo las
	// organizaciones aceptadas) y retorna la URI a la que redirigir para
	// retomar el flujo de autorización.
	FinalizeConsent(ctx context.Context, d *Details, organizationIDs []string) (redirectTo string, err error)
}
