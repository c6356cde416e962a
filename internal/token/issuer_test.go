package token

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/identity"
)

func TestIssuerIssue(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	codec := fixedCodec(testSecret, 0, now)
	issuer := NewIssuer(codec, 15*time.Minute)
	issuer.now = func() time.Time { return now }

	id := &identity.Identity{ID: 42, Handle: "alice", Role: identity.RoleAdministrator}
	signed, claims, err := issuer.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, identity.RoleAdministrator, claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IssuedAt.Time.Equal(now))
	assert.True(t, claims.ExpiresAt.Time.Equal(now.Add(15*time.Minute)))

	decoded, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, claims.ID, decoded.ID)
}

func TestIssuerConcurrentLoginsGetDistinctTokenIDs(t *testing.T) {
	now := time.Now().UTC()
	issuer := NewIssuer(fixedCodec(testSecret, 0, now), 15*time.Minute)
	id := &identity.Identity{ID: 7, Handle: "bob", Role: identity.RoleStandard}

	const n = 32
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, claims, err := issuer.Issue(id)
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = claims.ID
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, jti := range ids {
		require.NotEmpty(t, jti)
		_, dup := seen[jti]
		require.False(t, dup, "duplicate token id %s", jti)
		seen[jti] = struct{}{}
	}
}
