package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

const credentialColumns = `id, service, email, password, published_at, is_visible`

// systemConfigPassword значение колонки password у служебной строки.
const systemConfigPassword = "CONFIG_IGNORED"

func scanCredential(row rowScanner) (models.Credential, error) {
	var c models.Credential
	err := row.Scan(&c.ID, &c.Service, &c.Email, &c.Password, &c.PublishedAt, &c.IsVisible)
	return c, err
}

// ListAllCredentials возвращает все учётные данные, включая служебную строку,
// в порядке публикации, а при равной дате в порядке добавления.
func (s *Storage) ListAllCredentials(ctx context.Context) ([]models.Credential, error) {
	const op = "storage.ListAllCredentials"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+credentialColumns+` FROM app_credentials ORDER BY published_at, seq`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetCredential возвращает учётные данные по идентификатору.
func (s *Storage) GetCredential(ctx context.Context, id string) (models.Credential, error) {
	const op = "storage.GetCredential"
	if err := checkCtx(ctx, op); err != nil {
		return models.Credential{}, err
	}
	c, err := scanCredential(s.DB.QueryRowContext(ctx, `SELECT `+credentialColumns+` FROM app_credentials WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credential{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return models.Credential{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

const insertCredential = `INSERT INTO app_credentials (id, service, email, password, published_at, is_visible)
			  VALUES ($1, $2, $3, $4, $5, $6)`

// CreateCredential сохраняет учётные данные и возвращает их идентификатор.
func (s *Storage) CreateCredential(ctx context.Context, c models.Credential) (string, error) {
	const op = "storage.CreateCredential"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := s.DB.ExecContext(ctx, insertCredential, id, c.Service, c.Email, c.Password, c.PublishedAt, c.IsVisible); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// CreateCredentials сохраняет пачку учётных данных в одной транзакции.
func (s *Storage) CreateCredentials(ctx context.Context, creds []models.Credential) (int, error) {
	const op = "storage.CreateCredentials"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertCredential)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range creds {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), c.Service, c.Email, c.Password, c.PublishedAt, c.IsVisible); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(creds), nil
}

// UpdateCredential обновляет учётные данные.
func (s *Storage) UpdateCredential(ctx context.Context, c models.Credential) error {
	const op = "storage.UpdateCredential"
	query := `UPDATE app_credentials
			  SET service = $2, email = $3, password = $4, published_at = $5, is_visible = $6
			  WHERE id = $1 AND service <> '` + models.SystemConfigService + `'`
	return s.execOne(ctx, op, query, c.ID, c.Service, c.Email, c.Password, c.PublishedAt, c.IsVisible)
}

// DeleteCredential удаляет учётные данные безвозвратно.
func (s *Storage) DeleteCredential(ctx context.Context, id string) error {
	const op = "storage.DeleteCredential"
	return s.execOne(ctx, op, `DELETE FROM app_credentials WHERE id = $1 AND service <> '`+models.SystemConfigService+`'`, id)
}

// GetSystemConfig возвращает JSON системной конфигурации из служебной строки.
func (s *Storage) GetSystemConfig(ctx context.Context) (string, error) {
	const op = "storage.GetSystemConfig"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}
	var raw string
	err := s.DB.QueryRowContext(ctx,
		`SELECT email FROM app_credentials WHERE service = $1 ORDER BY seq LIMIT 1`,
		models.SystemConfigService).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return raw, nil
}

// SaveSystemConfig обновляет служебную строку или создаёт её, если её нет.
func (s *Storage) SaveSystemConfig(ctx context.Context, raw string, now time.Time) error {
	const op = "storage.SaveSystemConfig"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE app_credentials SET email = $2, published_at = $3 WHERE service = $1`,
		models.SystemConfigService, raw, now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch err = affected(res); {
	case err == nil:
		return nil
	case !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.DB.ExecContext(ctx, insertCredential,
		uuid.NewString(), models.SystemConfigService, raw, systemConfigPassword, now, false)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
