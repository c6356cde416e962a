package identity

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Hasher is the subset of the password hasher that seeding needs.
type Hasher interface {
	Hash(plaintext string) (string, error)
}

type seedFile struct {
	Identities []struct {
		Handle   string `yaml:"handle"`
		Password string `yaml:"password"`
		Role     Role   `yaml:"role"`
	} `yaml:"identities"`
}

// SeedFromFile creates the identities listed in a YAML file, skipping handles
// that already exist. Intended for bootstrap and local development only.
func (s *Store) SeedFromFile(ctx context.Context, path string, hasher Hasher) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return err
	}
	for _, entry := range sf.Identities {
		if entry.Handle == "" || entry.Password == "" {
			continue
		}
		role := entry.Role
		if role == "" {
			role = RoleStandard
		}
		if !role.Valid() {
			return fmt.Errorf("seed %s: unknown role %q", entry.Handle, entry.Role)
		}
		if _, err := s.GetByHandle(ctx, entry.Handle); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		hash, err := hasher.Hash(entry.Password)
		if err != nil {
			return fmt.Errorf("seed %s: %w", entry.Handle, err)
		}
		if _, err := s.Create(ctx, entry.Handle, hash, role); err != nil {
			return err
		}
	}
	return nil
}
