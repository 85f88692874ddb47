package pg

import (
	"context"

	"github.com/google/uuid"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

type userRepo struct{ *Store }

func (r *userRepo) Create(ctx context.Context, email, name, passwordHash string) (*repository.User, error) {
	const q = `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, LOWER($2), $3, $4, NOW())
		RETURNING id, email, name, password_hash, created_at`

	var u repository.User
	err := r.q.QueryRow(ctx, q, uuid.NewString(), email, name, passwordHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) Get(ctx context.Context, userID string) (*repository.User, error) {
	const q = `SELECT id, email, name, password_hash, created_at FROM users WHERE id = $1`

	var u repository.User
	err := r.q.QueryRow(ctx, q, userID).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	const q = `SELECT id, email, name, password_hash, created_at FROM users WHERE email = LOWER($1)`

	var u repository.User
	err := r.q.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}
