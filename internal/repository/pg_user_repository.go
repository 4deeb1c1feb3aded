package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Lutefd/coin-relay/internal/model"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(connURL string, db *sql.DB) (*PostgresUserRepository, error) {
	db, err := openDB(connURL, db)
	if err != nil {
		return nil, err
	}
	return &PostgresUserRepository{db: db}, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *model.UserDB) error {
	query := `INSERT INTO users (id, username, password, role, api_key, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Username, user.Password, user.Role, user.APIKey, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*model.UserDB, error) {
	query := `SELECT id, username, password, role, api_key, created_at, updated_at FROM users WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *PostgresUserRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.UserDB, error) {
	query := `SELECT id, username, password, role, api_key, created_at, updated_at FROM users WHERE api_key = $1`
	return r.getOne(ctx, query, apiKey)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg string) (*model.UserDB, error) {
	var user model.UserDB
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.Password, &user.Role, &user.APIKey, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) Close() error {
	return r.db.Close()
}
