package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dropDatabas3/consentd/internal/cache"
	"github.com/dropDatabas3/consentd/internal/store"
)

// HealthHandler responde /healthz verificando store y cache.
type HealthHandler struct {
	queries store.Queries
	cache   cache.Client
}

func NewHealthHandler(queries store.Queries, c cache.Client) *HealthHandler {
	return &HealthHandler{queries: queries, cache: c}
}

type healthStatus struct {
	Status string `json:"status"` // ok | degraded
	Store  string `json:"store"`
	Cache  string `json:"cache"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	st := healthStatus{Status: "ok", Store: "ok", Cache: "ok"}

	if err := h.queries.Ping(ctx); err != nil {
		st.Status = "degraded"
		st.Store = err.Error()
	}
	if err := h.cache.Ping(ctx); err != nil {
		st.Status = "degraded"
		st.Cache = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if st.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(st)
}
