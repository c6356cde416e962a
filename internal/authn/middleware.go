package authn

import (
	"encoding/json"
	"net/http"
	"strings"
)

// unauthenticatedBody is the single external reply for every token failure.
// The specific reason goes to the log, never to the caller.
const unauthenticatedBody = "authentication required"

// Middleware extracts and validates the bearer token on every request.
//
// A request without an Authorization header passes through unauthenticated;
// whether that is acceptable is the authorization gate's decision, not this
// layer's. A request that does present a token must present a valid one, and
// all invalid tokens are rejected identically.
func Middleware(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				svc.logger.Debug().Msg("authorization header without bearer token")
				rejectUnauthenticated(w)
				return
			}
			p, err := svc.Authenticate(r.Context(), raw)
			if err != nil {
				svc.logger.Info().Err(err).Str("path", r.URL.Path).Msg("token rejected")
				rejectUnauthenticated(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func rejectUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": unauthenticatedBody})
}
