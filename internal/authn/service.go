// Package authn implements credential verification at login and token
// verification on every subsequent request.
package authn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"authgate/internal/identity"
	"authgate/internal/password"
	"authgate/internal/revoke"
	"authgate/internal/token"
)

var (
	// ErrInvalidCredentials covers unknown handles, wrong passwords, and
	// banned accounts alike. Login callers must not be able to tell these
	// apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenRevoked marks a structurally valid token that was revoked
	// before its natural expiry.
	ErrTokenRevoked = errors.New("token revoked")
)

// IdentityStore is the slice of the credential store this service needs.
type IdentityStore interface {
	GetByHandle(ctx context.Context, handle string) (*identity.Identity, error)
	GetByID(ctx context.Context, id int64) (*identity.Identity, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role identity.Role) error
	SetBanned(ctx context.Context, id int64, banned bool) error
}

// Service ties the credential store, password hasher, token issuer, and
// revocation set together. Safe for concurrent use; per-request token
// validation touches no shared mutable state beyond the denylist.
type Service struct {
	store    IdentityStore
	hasher   password.Hasher
	issuer   *token.Issuer
	codec    *token.Codec
	denylist revoke.Denylist
	logger   zerolog.Logger

	// fallbackHash absorbs a full verification when the handle is unknown,
	// so login timing does not reveal whether an account exists.
	fallbackHash string
}

func NewService(store IdentityStore, hasher password.Hasher, issuer *token.Issuer, codec *token.Codec, denylist revoke.Denylist, logger zerolog.Logger) *Service {
	fallback, err := hasher.Hash("authgate.fallback.credential")
	if err != nil {
		fallback = ""
	}
	return &Service{
		store:        store,
		hasher:       hasher,
		issuer:       issuer,
		codec:        codec,
		denylist:     denylist,
		logger:       logger,
		fallbackHash: fallback,
	}
}

// Login verifies the handle/password pair and mints a token. Every failure
// mode returns ErrInvalidCredentials; unknown handles still pay for a hash
// verification.
func (s *Service) Login(ctx context.Context, handle, plaintext string) (string, *token.Claims, error) {
	id, err := s.store.GetByHandle(ctx, handle)
	if err != nil {
		s.hasher.Verify(plaintext, s.fallbackHash)
		if !errors.Is(err, identity.ErrNotFound) {
			s.logger.Error().Err(err).Msg("credential store lookup failed")
		}
		return "", nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(plaintext, id.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}
	if id.Banned {
		s.logger.Info().Int64("subject", id.ID).Msg("login rejected for banned identity")
		return "", nil, ErrInvalidCredentials
	}
	signed, claims, err := s.issuer.Issue(id)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Authenticate validates a bearer token string and resolves it to a
// principal. It never touches the credential store: validity is computable
// from the token plus at most one denylist lookup.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	subject, err := claims.SubjectID()
	if err != nil {
		return nil, token.ErrMalformed
	}
	if s.denylist != nil {
		if claims.ID != "" && s.denylist.IsRevoked(ctx, claims.ID) {
			return nil, ErrTokenRevoked
		}
		if claims.IssuedAt != nil && s.denylist.IsSubjectRevoked(ctx, claims.Subject, claims.IssuedAt.Time) {
			return nil, ErrTokenRevoked
		}
	}
	p := &Principal{
		Subject: subject,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// Logout revokes the presented token until its natural expiry. Tokens are
// otherwise stateless, so this is the only way logout can mean anything
// server-side.
func (s *Service) Logout(ctx context.Context, p *Principal) error {
	if s.denylist == nil || p.TokenID == "" {
		return nil
	}
	return s.denylist.Revoke(ctx, p.TokenID, p.ExpiresAt)
}

// ChangePassword verifies the current password, stores a fresh hash, and
// revokes every outstanding token of the subject.
func (s *Service) ChangePassword(ctx context.Context, subject int64, current, next string) error {
	id, err := s.store.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !s.hasher.Verify(current, id.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("authn: rehash: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, subject, hash); err != nil {
		return err
	}
	return s.revokeSubject(ctx, subject)
}

// SetRole changes an identity's role and revokes its outstanding tokens so
// the stale role snapshot dies immediately.
func (s *Service) SetRole(ctx context.Context, subject int64, role identity.Role) error {
	if err := s.store.UpdateRole(ctx, subject, role); err != nil {
		return err
	}
	return s.revokeSubject(ctx, subject)
}

// SetBanned toggles the ban flag. Banning revokes outstanding tokens;
// unbanning does not resurrect them.
func (s *Service) SetBanned(ctx context.Context, subject int64, banned bool) error {
	if err := s.store.SetBanned(ctx, subject, banned); err != nil {
		return err
	}
	if !banned {
		return nil
	}
	return s.revokeSubject(ctx, subject)
}

func (s *Service) revokeSubject(ctx context.Context, subject int64) error {
	if s.denylist == nil {
		return nil
	}
	return s.denylist.RevokeSubject(ctx, strconv.FormatInt(subject, 10), time.Now().UTC())
}
