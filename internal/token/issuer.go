package token

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"authgate/internal/identity"
)

// Issuer mints tokens for verified identities under a fixed lifetime policy.
type Issuer struct {
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

func NewIssuer(codec *Codec, ttl time.Duration) *Issuer {
	return &Issuer{codec: codec, ttl: ttl, now: time.Now}
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue produces a signed token for the identity with a fresh token id.
// Concurrent logins for the same identity receive distinct token ids, so
// revoking one leaves the others live.
func (i *Issuer) Issue(id *identity.Identity) (string, *Claims, error) {
	now := i.now().UTC()
	claims := &Claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := i.codec.Encode(claims)
	if err != nil {
		return "", nil, fmt.Errorf("token: issue: %w", err)
	}
	return signed, claims, nil
}
