package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Store is the Postgres-backed credential store.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var ErrNotFound = errors.New("identity not found")

// GetByHandle resolves an identity by its login handle. Matching is
// case-insensitive.
func (s *Store) GetByHandle(ctx context.Context, handle string) (*Identity, error) {
	const q = `SELECT id, handle, password_hash, role, banned, created_at
		FROM identities WHERE LOWER(handle) = LOWER($1)`
	return s.scanOne(s.db.QueryRowContext(ctx, q, handle))
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Identity, error) {
	const q = `SELECT id, handle, password_hash, role, banned, created_at
		FROM identities WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, q, id))
}

// Create inserts a new identity. The caller supplies an already-hashed
// password record, never a plaintext.
func (s *Store) Create(ctx context.Context, handle, passwordHash string, role Role) (*Identity, error) {
	const q = `
		INSERT INTO identities (handle, password_hash, role, banned, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id, handle, password_hash, role, banned, created_at
	`
	return s.scanOne(s.db.QueryRowContext(ctx, q, handle, passwordHash, role, time.Now().UTC()))
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE identities SET password_hash = $2 WHERE id = $1`
	return s.exec(ctx, q, id, passwordHash)
}

func (s *Store) UpdateRole(ctx context.Context, id int64, role Role) error {
	const q = `UPDATE identities SET role = $2 WHERE id = $1`
	return s.exec(ctx, q, id, role)
}

func (s *Store) SetBanned(ctx context.Context, id int64, banned bool) error {
	const q = `UPDATE identities SET banned = $2 WHERE id = $1`
	return s.exec(ctx, q, id, banned)
}

func (s *Store) scanOne(row *sql.Row) (*Identity, error) {
	id := &Identity{}
	err := row.Scan(&id.ID, &id.Handle, &id.PasswordHash, &id.Role, &id.Banned, &id.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return id, nil
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
