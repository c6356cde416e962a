package token

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"authgate/internal/identity"
)

// Claims is the payload of an issued credential token. Role is a snapshot of
// the identity's role at issuance; it can go stale relative to the live
// identity and is reconciled through revocation, not per-request lookups.
type Claims struct {
	Role identity.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the numeric identity id carried in the subject claim.
func (c *Claims) SubjectID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
