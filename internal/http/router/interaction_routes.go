package router

import (
	"net/http"

	mw "github.com/dropDatabas3/consentd/internal/http/middlewares"
)

// RegisterInteractionRoutes registra las rutas del flujo de interacción.
func RegisterInteractionRoutes(mux *http.ServeMux, deps Deps) {
	c := deps.Controllers

	// GET /interaction/consent - payload de consentimiento para la UI
	mux.Handle("GET /interaction/consent", interactionHandler(deps, http.HandlerFunc(c.Consent.Info)))

	// POST /interaction/consent - decisión de consentimiento
	mux.Handle("POST /interaction/consent", interactionHandler(deps, http.HandlerFunc(c.Consent.Submit)))
}

// interactionHandler crea el middleware chain para endpoints de interacción.
func interactionHandler(deps Deps, handler http.Handler) http.Handler {
	chain := []mw.Middleware{
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithNoStore(),
	}

	if len(deps.CORSAllowedOrigins) > 0 {
		chain = append(chain, mw.WithCORS(deps.CORSAllowedOrigins))
	}

	// Rate limiting por IP si está configurado
	if deps.RateLimiter != nil {
		chain = append(chain, mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: deps.RateLimiter,
			KeyFunc: mw.IPOnlyRateKey,
		}))
	}

	// Logging al final
	chain = append(chain, mw.WithLogging())

	return mw.Chain(handler, chain...)
}
