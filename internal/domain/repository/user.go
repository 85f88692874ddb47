package repository

import (
	"context"
	"time"
)

// User representa una cuenta. Mínimo necesario para ownership y sesión.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// Create crea un usuario. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, email, name, passwordHash string) (*User, error)

	// Get obtiene un usuario por ID. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, userID string) (*User, error)

	// GetByEmail busca por email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)
}
