// Package revoke tracks tokens invalidated before their natural expiry.
//
// Two kinds of entries exist: single token ids (logout) and per-subject
// watermarks (password change, role change, ban) that kill every token issued
// at or before the watermark. The store is bounded: entries live only as long
// as a token issued at write time could still be valid, after which the cache
// evicts them.
package revoke

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/allegro/bigcache/v3"
)

// Denylist is the revocation set consulted on every authenticated request.
// Implementations must be safe for concurrent revoke and check calls.
type Denylist interface {
	// Revoke invalidates a single token id until its natural expiry.
	Revoke(ctx context.Context, tokenID string, naturalExpiry time.Time) error
	// IsRevoked reports whether the token id has been revoked.
	IsRevoked(ctx context.Context, tokenID string) bool
	// RevokeSubject invalidates every token of the subject issued at or
	// before the given time.
	RevokeSubject(ctx context.Context, subject string, at time.Time) error
	// IsSubjectRevoked reports whether a token issued to the subject at
	// issuedAt falls under a subject-wide revocation.
	IsSubjectRevoked(ctx context.Context, subject string, issuedAt time.Time) bool
}

// Memory is an in-process Denylist backed by bigcache. The cache's life
// window is sized to the maximum remaining lifetime of any revocable token,
// so the set never grows unbounded.
type Memory struct {
	cache *bigcache.BigCache
}

// NewMemory builds a Memory denylist. window must be at least the token TTL
// plus the clock-skew leeway; entries older than the window are evicted.
func NewMemory(window time.Duration) (*Memory, error) {
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(window))
	if err != nil {
		return nil, err
	}
	return &Memory{cache: cache}, nil
}

func (m *Memory) Revoke(ctx context.Context, tokenID string, naturalExpiry time.Time) error {
	return m.cache.Set(tokenKey(tokenID), encodeTime(naturalExpiry))
}

func (m *Memory) IsRevoked(ctx context.Context, tokenID string) bool {
	_, err := m.cache.Get(tokenKey(tokenID))
	return err == nil
}

func (m *Memory) RevokeSubject(ctx context.Context, subject string, at time.Time) error {
	// Keep the latest watermark if one already exists.
	if existing, err := m.cache.Get(subjectKey(subject)); err == nil {
		if decodeTime(existing).After(at) {
			return nil
		}
	}
	return m.cache.Set(subjectKey(subject), encodeTime(at))
}

func (m *Memory) IsSubjectRevoked(ctx context.Context, subject string, issuedAt time.Time) bool {
	buf, err := m.cache.Get(subjectKey(subject))
	if err != nil {
		return false
	}
	return !issuedAt.After(decodeTime(buf))
}

func tokenKey(id string) string { return "jti:" + id }

func subjectKey(sub string) string { return "sub:" + sub }

func encodeTime(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.Unix()))
	return buf
}

func decodeTime(buf []byte) time.Time {
	if len(buf) != 8 {
		return time.Time{}
	}
	return time.Unix(int64(binary.BigEndian.Uint64(buf)), 0)
}
