package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

// GetAdmin возвращает учётную запись администратора.
func (s *Storage) GetAdmin(ctx context.Context, username string) (models.AdminUser, error) {
	const op = "storage.GetAdmin"
	if err := checkCtx(ctx, op); err != nil {
		return models.AdminUser{}, err
	}
	var a models.AdminUser
	err := s.DB.QueryRowContext(ctx,
		`SELECT username, password_hash FROM admin_users WHERE username = $1`, username).
		Scan(&a.Username, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// SaveAdmin создаёт администратора или меняет его пароль.
func (s *Storage) SaveAdmin(ctx context.Context, username, passwordHash string) error {
	const op = "storage.SaveAdmin"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO admin_users (username, password_hash) VALUES ($1, $2)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`,
		username, passwordHash)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
