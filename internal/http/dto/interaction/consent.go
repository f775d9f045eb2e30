// Package interaction contiene los DTOs del flujo de interacción de
// consentimiento.
package interaction

import (
	"github.com/dropDatabas3/consentd/internal/consent"
	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

// ApplicationView is the public application identity shown on the consent
// screen, with sign-in-experience override fields already merged in.
type ApplicationView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
	TermsURL    string `json:"termsUrl,omitempty"`
	PrivacyURL  string `json:"privacyUrl,omitempty"`
}

// MergeApplication composes the public application fields with the optional
// sign-in-experience override. Override fields win when present.
func MergeApplication(app *repository.Application, sie *repository.SignInExperience) ApplicationView {
	v := ApplicationView{
		ID:          app.ID,
		Name:        app.Name,
		Description: app.Description,
	}
	if sie == nil {
		return v
	}
	if sie.DisplayName != "" {
		v.Name = sie.DisplayName
	}
	v.LogoURL = sie.LogoURL
	v.TermsURL = sie.TermsURL
	v.PrivacyURL = sie.PrivacyURL
	return v
}

// UserView is the public profile of the consenting user.
type UserView struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// OrganizationEntry is one organization the user belongs to, with its own
// missing-resource-scope breakdown when extended scope resolution is enabled.
type OrganizationEntry struct {
	ID                    string                          `json:"id"`
	Name                  string                          `json:"name"`
	MissingResourceScopes []consent.MissingResourceScopes `json:"missingResourceScopes,omitempty"`
}

// ConsentInfoResponse is the merged payload for GET /interaction/consent.
type ConsentInfoResponse struct {
	Application           ApplicationView                 `json:"application"`
	User                  UserView                        `json:"user"`
	Organizations         []OrganizationEntry             `json:"organizations"`
	MissingOIDCScope      []string                        `json:"missingOIDCScope"`
	MissingResourceScopes []consent.MissingResourceScopes `json:"missingResourceScopes"`
	RedirectURI           string                          `json:"redirectUri"`
}

// ConsentSubmitRequest is the input for POST /interaction/consent.
type ConsentSubmitRequest struct {
	OrganizationIDs []string `json:"organizationIds,omitempty"`
}

// ConsentSubmitResponse carries the redirect target that resumes the
// authorization flow.
type ConsentSubmitResponse struct {
	RedirectTo string `json:"redirectTo"`
}
