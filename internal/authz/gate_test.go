package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"authgate/internal/authn"
	"authgate/internal/identity"
)

func TestAuthorize(t *testing.T) {
	standard := &authn.Principal{Subject: 1, Role: identity.RoleStandard}
	admin := &authn.Principal{Subject: 2, Role: identity.RoleAdministrator}
	bogus := &authn.Principal{Subject: 3, Role: identity.Role("superuser")}

	tests := []struct {
		name     string
		p        *authn.Principal
		required identity.Role
		want     error
	}{
		{"nil principal", nil, identity.RoleStandard, ErrUnauthenticated},
		{"standard meets standard", standard, identity.RoleStandard, nil},
		{"standard denied admin", standard, identity.RoleAdministrator, ErrForbidden},
		{"admin meets standard", admin, identity.RoleStandard, nil},
		{"admin meets admin", admin, identity.RoleAdministrator, nil},
		{"unknown role denied", bogus, identity.RoleStandard, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.p, tt.required)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guard := RequireRole(identity.RoleAdministrator, zerolog.Nop())(next)

	serve := func(p *authn.Principal) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if p != nil {
			req = req.WithContext(authn.WithPrincipal(req.Context(), p))
		}
		rec := httptest.NewRecorder()
		guard.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)
	assert.Equal(t, http.StatusForbidden,
		serve(&authn.Principal{Subject: 1, Role: identity.RoleStandard}).Code)
	assert.Equal(t, http.StatusOK,
		serve(&authn.Principal{Subject: 2, Role: identity.RoleAdministrator}).Code)
}
