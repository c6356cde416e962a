package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"authgate/internal/authn"
	"authgate/internal/authz"
	"authgate/internal/identity"
)

// NewRouter wires the authentication middleware, the role gates, and the
// endpoint handlers. Every route passes through the token middleware; which
// routes demand a principal is decided per route by the gate.
func NewRouter(logger zerolog.Logger, authSvc *authn.Service) http.Handler {
	router := httprouter.New()
	h := NewHandlers(authSvc, logger)

	authenticated := authn.Middleware(authSvc)
	standard := authz.RequireRole(identity.RoleStandard, logger)
	admin := authz.RequireRole(identity.RoleAdministrator, logger)

	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	route := func(method, path string, handler http.Handler) {
		router.Handler(method, path, authenticated(handler))
	}

	route(http.MethodPost, "/api/v1/auth/login", http.HandlerFunc(h.Login))
	route(http.MethodPost, "/api/v1/auth/logout", standard(http.HandlerFunc(h.Logout)))
	route(http.MethodPost, "/api/v1/auth/password", standard(http.HandlerFunc(h.ChangePassword)))
	route(http.MethodGet, "/api/v1/auth/me", standard(http.HandlerFunc(h.Me)))

	route(http.MethodPut, "/api/v1/admin/users/:id/role", admin(http.HandlerFunc(h.SetRole)))
	route(http.MethodPut, "/api/v1/admin/users/:id/ban", admin(http.HandlerFunc(h.SetBan)))

	return router
}
