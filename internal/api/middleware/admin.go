package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/edvin/agentauth/internal/api/response"
)

// AdminTokenHeader carries the shared secret for key management routes.
const AdminTokenHeader = "X-Admin-Token"

// AdminToken returns a middleware that requires the X-Admin-Token header to
// equal token. An empty token disables the check.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte(token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminTokenHeader)
			if got == "" {
				response.WriteError(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "missing admin token", "")
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				response.WriteError(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "invalid admin token", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
