package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// IdempotentReplayHeader marks a purchase response served from an earlier
// settlement with the same Idempotency-Key.
const IdempotentReplayHeader = "Idempotent-Replayed"

// CORSHandler returns the CORS handler for the store API. Clients authenticate
// with bearer tokens, so cookies are never shared cross-origin.
func CORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", IdempotentReplayHeader},
		AllowCredentials: false,
		MaxAge:           600,
	})
}
