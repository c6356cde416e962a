package authn

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/identity"
)

func newMiddlewareFixture(t *testing.T) (*Service, string) {
	t.Helper()
	svc, _ := newTestService(t, &identity.Identity{
		ID: 42, Handle: "alice", PasswordHash: mustHash(t, "open sesame"), Role: identity.RoleStandard,
	})
	signed, _, err := svc.Login(t.Context(), "alice", "open sesame")
	require.NoError(t, err)
	return svc, signed
}

func runMiddleware(svc *Service, authorization string) (*httptest.ResponseRecorder, *Principal, bool) {
	var (
		p       *Principal
		reached bool
	)
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		p, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, p, reached
}

func TestMiddlewareValidToken(t *testing.T) {
	svc, signed := newMiddlewareFixture(t)

	rec, p, reached := runMiddleware(svc, "Bearer "+signed)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, p)
	assert.Equal(t, int64(42), p.Subject)
	assert.Equal(t, identity.RoleStandard, p.Role)
}

func TestMiddlewareNoTokenPassesThroughUnauthenticated(t *testing.T) {
	svc, _ := newMiddlewareFixture(t)

	rec, p, reached := runMiddleware(svc, "")
	assert.True(t, reached, "absence of a token is not an error by itself")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, p)
}

func TestMiddlewareRejectionsAreUniform(t *testing.T) {
	svc, signed := newMiddlewareFixture(t)

	revokedSigned := signed
	p, err := svc.Authenticate(t.Context(), revokedSigned)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(t.Context(), p))

	cases := map[string]string{
		"wrong scheme":   "Basic abc",
		"empty bearer":   "Bearer ",
		"garbage token":  "Bearer not.a.token",
		"tampered token": "Bearer " + signed[:len(signed)-4] + "AAAA",
		"revoked token":  "Bearer " + revokedSigned,
	}

	var bodies []string
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, _, reached := runMiddleware(svc, header)
			assert.False(t, reached)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		})
	}
	// Every rejection reply is byte-identical: no oracle for which check
	// failed.
	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
}
