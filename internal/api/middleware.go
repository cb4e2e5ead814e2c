/**
 * @description
 * This file contains custom middleware for the HTTP router. The
 * account-service is only called by sibling backend services, so its auth
 * surface is a shared internal API key rather than end-user tokens.
 *
 * @dependencies
 * - crypto/subtle, net/http, strings: Standard Go libraries.
 */

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// InternalAPIKeyMiddleware rejects requests that do not carry the configured
// key in the X-Internal-Api-Key header. The comparison is constant-time.
func InternalAPIKeyMiddleware(apiKey string) func(http.Handler) http.Handler {
	expected := []byte(strings.TrimSpace(apiKey))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := []byte(strings.TrimSpace(r.Header.Get("X-Internal-Api-Key")))
			if len(expected) == 0 ||
				len(provided) != len(expected) ||
				subtle.ConstantTimeCompare(provided, expected) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
