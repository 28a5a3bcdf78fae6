package db

import (
	"context"
	"time"

	"github.com/deallens/deallens/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (id, email, username, full_name, hashed_password, organization)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at
    `

	return db.Pool.QueryRow(ctx, query,
		u.ID, u.Email, u.Username, u.FullName, u.HashedPassword, u.Organization,
	).Scan(&u.CreatedAt)
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
        SELECT id, email, username, full_name, hashed_password, organization,
               is_active, created_at, last_login
        FROM users
        WHERE email = $1
    `

	var u models.User
	err := db.Pool.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.HashedPassword,
		&u.Organization, &u.IsActive, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `
        SELECT id, email, username, full_name, hashed_password, organization,
               is_active, created_at, last_login
        FROM users
        WHERE id = $1
    `

	var u models.User
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.FullName, &u.HashedPassword,
		&u.Organization, &u.IsActive, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (db *DB) UserExists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		email, username,
	).Scan(&exists)
	return exists, err
}

func (db *DB) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at)
	return err
}
