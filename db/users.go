package db

import (
	"context"
	"strings"

	"github.com/mockhub/mockhub-console/models"
)

const userColumns = `id, email, username, password_hash, is_active, is_superuser, is_verified`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.UserRecord, error) {
	var u models.UserRecord
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsActive, &u.IsSuperuser, &u.IsVerified)
	return u, mapErr(err)
}

func (h *HubDB) CreateUser(ctx context.Context, u models.UserRecord) (models.UserRecord, error) {
	row := h.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, username, password_hash, is_active, is_superuser, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		strings.ToLower(u.Email), u.Username, u.PasswordHash, u.IsActive, u.IsSuperuser, u.IsVerified)
	return scanUser(row)
}

func (h *HubDB) GetUser(ctx context.Context, id int64) (models.UserRecord, error) {
	return scanUser(h.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (h *HubDB) GetUserByEmail(ctx context.Context, email string) (models.UserRecord, error) {
	return scanUser(h.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (h *HubDB) GetUserByUsername(ctx context.Context, username string) (models.UserRecord, error) {
	return scanUser(h.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}
