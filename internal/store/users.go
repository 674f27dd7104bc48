package store

import (
	"context"

	"kelasku/server/internal/database"
	"kelasku/server/internal/models"
)

// GetUserByEmail looks up a login account by email.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := database.Pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role, created_at FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID looks up a login account by id.
func GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := database.Pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
