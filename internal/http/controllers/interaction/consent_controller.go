package interaction

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dropDatabas3/consentd/internal/consent"
	dto "github.com/dropDatabas3/consentd/internal/http/dto/interaction"
	httperrors "github.com/dropDatabas3/consentd/internal/http/errors"
	svc "github.com/dropDatabas3/consentd/internal/http/services/interaction"
	provider "github.com/dropDatabas3/consentd/internal/interaction"
)

type ConsentController struct {
	service  svc.ConsentService
	provider provider.Provider
}

func NewConsentController(service svc.ConsentService, p provider.Provider) *ConsentController {
	return &ConsentController{
		service:  service,
		provider: p,
	}
}

// Info serves the merged consent payload for the in-progress interaction.
// GET /interaction/consent
func (c *ConsentController) Info(w http.ResponseWriter, r *http.Request) {
	d, err := c.provider.Details(r.Context(), r)
	if err != nil {
		writeConsentError(w, err)
		return
	}

	res, err := c.service.Info(r.Context(), d)
	if err != nil {
		writeConsentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Submit processes the consent decision and returns the resume redirect.
// POST /interaction/consent
func (c *ConsentController) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.ConsentSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON.WithCause(err))
		return
	}

	d, err := c.provider.Details(r.Context(), r)
	if err != nil && !errors.Is(err, provider.ErrSessionNotFound) {
		writeConsentError(w, err)
		return
	}

	res, err := c.service.Submit(r.Context(), d, req)
	if err != nil {
		writeConsentError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// writeConsentError maps service errors to protocol error responses.
func writeConsentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrSessionNotFound):
		httperrors.WriteError(w, httperrors.ErrSessionNotFound)
	case errors.Is(err, svc.ErrInvalidClient):
		httperrors.WriteError(w, httperrors.ErrInvalidClient)
	case errors.Is(err, svc.ErrInvalidRedirectURI):
		httperrors.WriteError(w, httperrors.ErrInvalidRedirectURI)
	case errors.Is(err, svc.ErrInvalidOrganizationID):
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail(err.Error()))
	case errors.Is(err, consent.ErrInvalidTarget):
		httperrors.WriteError(w, httperrors.ErrInvalidTarget.WithDetail(err.Error()))
	case errors.Is(err, consent.ErrNotMember):
		httperrors.WriteError(w, httperrors.ErrNotMember)
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
