package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/ecom-backend/pkg/config"
)

var (
	corsMethods = []string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}
	corsRequestHeaders = []string{
		"Accept", "Authorization", "Content-Type",
		IdempotencyKeyHeader, RequestIDHeader,
	}
	corsExposedHeaders = []string{RequestIDHeader, "Retry-After", IdempotencyReplayHeader}
)

// CORS applies the configured origin allow-list. A "*" origin never carries
// credentials.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsRequestHeaders,
		ExposedHeaders:   corsExposedHeaders,
		AllowCredentials: cfg.AllowCredentials && !wildcard,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})
}
