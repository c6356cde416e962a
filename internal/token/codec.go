// Package token encodes and decodes the signed bearer tokens that carry
// authentication state between requests. Tokens are compact HS256 JWTs:
// self-contained, URL-safe, verifiable from the signing secret alone.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Decode failures collapse to this closed set. The request authenticator
// logs the specific kind but presents callers a single uniform rejection.
var (
	ErrMalformed        = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrExpired          = errors.New("token expired")
	ErrNotYetValid      = errors.New("token not yet valid")
)

// maxClaimHorizon bounds how far in the future an expiry claim may sit before
// it is treated as malformed rather than merely long-lived.
const maxClaimHorizon = 10 * 365 * 24 * time.Hour

// Codec signs and verifies credential tokens. The secret is immutable after
// construction and safe for concurrent use.
type Codec struct {
	secret []byte
	leeway time.Duration
	now    func() time.Time
}

// NewCodec returns a codec signing with HS256. leeway is the clock-skew
// allowance applied to expiry and issued-at checks.
func NewCodec(secret []byte, leeway time.Duration) *Codec {
	return &Codec{secret: secret, leeway: leeway, now: time.Now}
}

// Encode signs the claims into a compact token string.
func (c *Codec) Encode(claims *Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and time claims of a token string and returns
// its claims. The signature is checked before any claim is trusted; every
// failure maps onto the package's closed error set.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(c.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// Out-of-range time claims are malformed input, not a live
		// expiry or maturity failure.
		if tok != nil && c.timeClaimsOutOfRange(claims) {
			return nil, ErrMalformed
		}
		return nil, mapParseError(err)
	}
	if !tok.Valid {
		return nil, ErrSignatureInvalid
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, ErrMalformed
	}
	if c.timeClaimsOutOfRange(claims) {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (c *Codec) keyFunc(tok *jwt.Token) (interface{}, error) {
	if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
	}
	return c.secret, nil
}

func (c *Codec) timeClaimsOutOfRange(claims *Claims) bool {
	if claims.ExpiresAt != nil {
		if claims.ExpiresAt.Unix() <= 0 {
			return true
		}
		if claims.ExpiresAt.After(c.now().Add(maxClaimHorizon)) {
			return true
		}
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Unix() < 0 {
		return true
	}
	return false
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	default:
		// Structural problems, missing required claims, unexpected
		// algorithms: all malformed. Unknown failures fail closed the
		// same way.
		return ErrMalformed
	}
}
