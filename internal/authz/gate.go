// Package authz decides whether an authenticated principal may perform an
// operation. It enforces role only; object-level ownership checks belong to
// the handlers that know the object.
package authz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"authgate/internal/authn"
	"authgate/internal/identity"
)

var (
	// ErrUnauthenticated means no valid principal was present and the
	// operation requires one.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means a valid principal was present but its role does
	// not satisfy the requirement.
	ErrForbidden = errors.New("forbidden")
)

// Authorize checks a principal against a required role. A nil principal is
// unauthenticated; an insufficient role is forbidden. Administrator satisfies
// every requirement.
func Authorize(p *authn.Principal, required identity.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if !p.Role.Satisfies(required) {
		return ErrForbidden
	}
	return nil
}

// RequireRole guards an http.Handler with a role requirement. Missing or
// absent principals get 401, insufficient roles get 403; both replies carry
// generic bodies while the log records which it was.
func RequireRole(required identity.Role, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, _ := authn.PrincipalFromContext(r.Context())
			switch err := Authorize(p, required); {
			case errors.Is(err, ErrUnauthenticated):
				logger.Debug().Str("path", r.URL.Path).Msg("unauthenticated request to protected route")
				reply(w, http.StatusUnauthorized, "authentication required")
			case errors.Is(err, ErrForbidden):
				logger.Info().Int64("subject", p.Subject).Str("role", string(p.Role)).
					Str("path", r.URL.Path).Msg("insufficient role")
				reply(w, http.StatusForbidden, "forbidden")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func reply(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
