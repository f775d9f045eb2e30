// Package handlers contiene los handlers administrativos montados con chi.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
	dto "github.com/dropDatabas3/consentd/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/consentd/internal/http/errors"
	"github.com/dropDatabas3/consentd/internal/observability/logger"
	"github.com/dropDatabas3/consentd/internal/store"
	"github.com/dropDatabas3/consentd/internal/validation"
)

// AdminGrantsHandler expone la gestión de organization grants:
// listados por usuario o aplicación y revocación.
type AdminGrantsHandler struct {
	queries store.Queries
}

func NewAdminGrantsHandler(queries store.Queries) *AdminGrantsHandler {
	return &AdminGrantsHandler{queries: queries}
}

func (h *AdminGrantsHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Get("/admin/users/{userID}/grants", h.listByUser)
		r.Get("/admin/applications/{applicationID}/grants", h.listByApplication)
		r.Delete("/admin/grants/{grantID}", h.revoke)
	})
}

// GET /admin/users/{userID}/grants
func (h *AdminGrantsHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if !validation.ValidEntityID(userID) {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("userID inválido"))
		return
	}

	grants, err := h.queries.Grants().ListByUser(r.Context(), userID)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	writeGrantList(w, grants)
}

// GET /admin/applications/{applicationID}/grants
func (h *AdminGrantsHandler) listByApplication(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "applicationID")
	if !validation.ValidEntityID(applicationID) {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("applicationID inválido"))
		return
	}

	grants, err := h.queries.Grants().ListByApplication(r.Context(), applicationID)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}
	writeGrantList(w, grants)
}

// DELETE /admin/grants/{grantID}
func (h *AdminGrantsHandler) revoke(w http.ResponseWriter, r *http.Request) {
	grantID := chi.URLParam(r, "grantID")
	if !validation.ValidEntityID(grantID) {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("grantID inválido"))
		return
	}

	if err := h.queries.Grants().Delete(r.Context(), grantID); err != nil {
		if repository.IsNotFound(err) {
			httperrors.WriteError(w, httperrors.ErrNotFound)
			return
		}
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
		return
	}

	logger.From(r.Context()).Info("organization grant revoked",
		logger.Layer("handler"),
		logger.Op("admin.grants.revoke"),
		logger.String("grant_id", grantID),
	)
	w.WriteHeader(http.StatusNoContent)
}

func writeGrantList(w http.ResponseWriter, grants []repository.OrganizationGrant) {
	out := make([]dto.GrantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, dto.GrantFromDomain(g))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dto.GrantListResponse{Grants: out, Total: len(out)})
}
