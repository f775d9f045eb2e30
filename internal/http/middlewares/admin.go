package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/dropDatabas3/consentd/internal/http/errors"
)

// RequireAPIKey exige el header X-Admin-API-Key en rutas de administración.
// Con key configurada vacía, la superficie admin queda deshabilitada (403).
func RequireAPIKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("admin API disabled"))
				return
			}

			got := r.Header.Get("X-Admin-API-Key")
			if got == "" {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("X-Admin-API-Key required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				errors.WriteError(w, errors.ErrUnauthorized.WithDetail("invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
