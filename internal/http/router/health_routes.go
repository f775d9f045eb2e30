package router

import (
	"net/http"

	mw "github.com/dropDatabas3/consentd/internal/http/middlewares"
)

// RegisterHealthRoutes registra /healthz. Sin rate limit: lo consultan probes.
func RegisterHealthRoutes(mux *http.ServeMux, deps Deps) {
	if deps.Health == nil {
		return
	}
	mux.Handle("GET /healthz", mw.Chain(deps.Health,
		mw.WithRecover(),
		mw.WithNoStore(),
	))
}
