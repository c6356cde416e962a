package authn

import (
	"context"
	"time"

	"authgate/internal/identity"
)

// Principal is the per-request authentication context: the resolved subject
// and the role snapshot from its token. It lives for exactly one request and
// is never shared across requests.
type Principal struct {
	Subject   int64
	Role      identity.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type contextKey struct{}

var principalKey contextKey

// WithPrincipal attaches an authenticated principal to the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the request's principal, if one was attached.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}
