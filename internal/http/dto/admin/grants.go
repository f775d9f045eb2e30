// Package admin contiene DTOs para endpoints administrativos.
package admin

import (
	"time"

	"github.com/dropDatabas3/consentd/internal/domain/repository"
)

// GrantResponse representa un organization grant en la respuesta.
type GrantResponse struct {
	ID             string    `json:"id"`
	ApplicationID  string    `json:"application_id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	GrantedAt      time.Time `json:"granted_at"`
}

// GrantFromDomain convierte la entidad de dominio al DTO.
func GrantFromDomain(g repository.OrganizationGrant) GrantResponse {
	return GrantResponse{
		ID:             g.ID,
		ApplicationID:  g.ApplicationID,
		UserID:         g.UserID,
		OrganizationID: g.OrganizationID,
		GrantedAt:      g.GrantedAt,
	}
}

// GrantListResponse es la lista de grants de un usuario o aplicación.
type GrantListResponse struct {
	Grants []GrantResponse `json:"grants"`
	Total  int             `json:"total"`
}
