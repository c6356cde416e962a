package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	record, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, h.Verify("correct horse battery staple", record))
	assert.False(t, h.Verify("correct horse battery stapl", record))
	assert.False(t, h.Verify("", record))
}

func TestBcryptHasherSaltedRecords(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same password")
	require.NoError(t, err)
	b, err := h.Hash("same password")
	require.NoError(t, err)

	// Salt is embedded in each record, so identical inputs hash differently
	// but both verify.
	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("same password", a))
	assert.True(t, h.Verify("same password", b))
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	_, err := h.Hash(string(long))
	assert.Error(t, err)
}

func TestVerifyCorruptRecord(t *testing.T) {
	for name, h := range map[string]Hasher{
		"bcrypt":   NewBcryptHasher(bcrypt.MinCost),
		"argon2id": NewArgon2Hasher(1, 8*1024, 1),
	} {
		t.Run(name, func(t *testing.T) {
			// Corrupt or foreign records are a plain mismatch, never a
			// distinguishable failure.
			assert.False(t, h.Verify("whatever", ""))
			assert.False(t, h.Verify("whatever", "not-a-hash-record"))
			assert.False(t, h.Verify("whatever", "$argon2id$v=19$m=8192,t=1,p=1$%%%$%%%"))
		})
	}
}

func TestArgon2HasherRoundTrip(t *testing.T) {
	h := NewArgon2Hasher(1, 8*1024, 1)

	record, err := h.Hash("hunter2hunter2")
	require.NoError(t, err)
	assert.Contains(t, record, "$argon2id$")

	assert.True(t, h.Verify("hunter2hunter2", record))
	assert.False(t, h.Verify("hunter2hunter3", record))
}

func TestCrossAlgorithmVerifyFails(t *testing.T) {
	bc := NewBcryptHasher(bcrypt.MinCost)
	ar := NewArgon2Hasher(1, 8*1024, 1)

	record, err := bc.Hash("some password")
	require.NoError(t, err)
	assert.False(t, ar.Verify("some password", record))
}

func TestNewHasherFromConfig(t *testing.T) {
	h := NewHasher(Config{})
	_, ok := h.(*BcryptHasher)
	assert.True(t, ok, "default algorithm is bcrypt")

	h = NewHasher(Config{Algorithm: AlgorithmArgon2id})
	_, ok = h.(*Argon2Hasher)
	assert.True(t, ok)
}
