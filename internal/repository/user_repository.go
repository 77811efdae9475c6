package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/evaluation-system/internal/models"
)

// UserRepository provides database access for login accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every user ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT username, password, role FROM users ORDER BY username`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT username, password, role FROM users WHERE username = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// Upsert inserts the user or replaces the stored password and role.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (username, password, role) VALUES ($1, $2, $3)
        ON CONFLICT (username) DO UPDATE SET password = EXCLUDED.password, role = EXCLUDED.role`
	if _, err := r.db.ExecContext(ctx, query, user.Username, user.Password, user.Role); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Delete removes a user. A missing user yields sql.ErrNoRows.
func (r *UserRepository) Delete(ctx context.Context, username string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
