package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/utils"
)

const apiKeyHeader = "X-API-Key"

// APIKeyMiddleware guards the API with a shared key carried in the
// X-API-Key header. An empty configured key disables the check.
func APIKeyMiddleware(configuredKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if configuredKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(apiKeyHeader)
			if provided == "" {
				logger.L.Debug("APIKeyMiddleware: missing API key header", "path", r.URL.Path)
				utils.SendJSONError(w, "API key required", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(configuredKey)) != 1 {
				logger.L.Warn("APIKeyMiddleware: invalid API key", "path", r.URL.Path)
				utils.SendJSONError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
