package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// BearerAuth gates /api/ routes behind one process-wide shared secret.
// A request passes when its Authorization header carries exactly that
// token; the comparison is constant time. An empty configured token
// disables the gate entirely (local development).
func BearerAuth(token string, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			presented, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Invalid bearer token")
				WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
