package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/consentd/internal/http/middlewares"
)

// RegisterAdminRoutes registra la superficie administrativa, montada con chi
// y protegida por X-Admin-API-Key.
func RegisterAdminRoutes(mux *http.ServeMux, deps Deps) {
	if deps.AdminGrants == nil {
		return
	}

	r := chi.NewRouter()
	deps.AdminGrants.Register(r)

	h := mw.Chain(r,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
		mw.RequireAPIKey(deps.AdminAPIKey),
		mw.WithLogging(),
	)

	mux.Handle("/admin/", h)
}
