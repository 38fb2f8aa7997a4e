package postgres

import (
	"context"
	"database/sql"

	"github.com/famoney/famoney-api/models"
)

type users struct {
	db *sql.DB
}

func (r users) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, avatar, totp_secret, totp_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Avatar,
		user.TOTPSecret, user.TOTPEnabled, user.CreatedAt, user.UpdatedAt,
	)
	return err
}

func (r users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE LOWER(email) = LOWER($1)`, email)
}

func (r users) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	query := `
		SELECT id, email, password_hash, name, COALESCE(avatar, ''), COALESCE(totp_secret, ''), totp_enabled, created_at, updated_at
		FROM users ` + where

	var user models.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Avatar,
		&user.TOTPSecret, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r users) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, avatar = $4,
		    totp_secret = $5, totp_enabled = $6, updated_at = $7
		WHERE id = $8
	`
	_, err := r.db.ExecContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Avatar,
		user.TOTPSecret, user.TOTPEnabled, user.UpdatedAt, user.ID,
	)
	return err
}

func (r users) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
