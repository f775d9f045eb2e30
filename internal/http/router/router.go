// Package router define las rutas HTTP del servicio.
package router

import (
	"net/http"

	httpx "github.com/dropDatabas3/consentd/internal/http"
	ctrl "github.com/dropDatabas3/consentd/internal/http/controllers/interaction"
	"github.com/dropDatabas3/consentd/internal/http/handlers"
	"github.com/dropDatabas3/consentd/internal/rate"
)

// Deps contiene las dependencias para armar el router principal.
type Deps struct {
	Controllers *ctrl.Controllers
	AdminGrants *handlers.AdminGrantsHandler
	Health      *handlers.HealthHandler

	RateLimiter        rate.Limiter // opcional
	AdminAPIKey        string
	CORSAllowedOrigins []string

	MetricsHandler http.Handler // opcional: handler de /metrics
}

// New arma el mux principal con todas las rutas del servicio.
func New(deps Deps) http.Handler {
	mux := http.NewServeMux()

	RegisterInteractionRoutes(mux, deps)
	RegisterAdminRoutes(mux, deps)
	RegisterHealthRoutes(mux, deps)

	if deps.MetricsHandler != nil {
		mux.Handle("GET /metrics", deps.MetricsHandler)
	}

	return httpx.WithMetrics(mux)
}
