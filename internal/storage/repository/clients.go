package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

const clientColumns = `id, phone_number, client_name, client_password, subscriptions, purchase_date,
	duration_months, is_debtor, override_expiration, deleted, game_progress, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (models.ClientRecord, error) {
	var (
		c        models.ClientRecord
		progress []byte
	)
	err := row.Scan(&c.ID, &c.PhoneNumber, &c.ClientName, &c.ClientPassword, &c.Subscriptions,
		&c.PurchaseDate, &c.DurationMonths, &c.IsDebtor, &c.OverrideExpiration, &c.Deleted,
		&progress, &c.CreatedAt)
	if err != nil {
		return models.ClientRecord{}, err
	}
	if len(progress) > 0 {
		c.GameProgress = json.RawMessage(progress)
	}
	return c, nil
}

func (s *Storage) queryClients(ctx context.Context, op, query string, args ...any) ([]models.ClientRecord, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.ClientRecord
	for rows.Next() {
		c, err := scanClient(rows)
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

// ListAllClients возвращает все записи клиентов, включая удалённые, в порядке создания.
func (s *Storage) ListAllClients(ctx context.Context) ([]models.ClientRecord, error) {
	const op = "storage.ListAllClients"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryClients(ctx, op, `SELECT `+clientColumns+` FROM clients ORDER BY created_at, id`)
}

// ListClientsByPhones возвращает записи с любым из указанных номеров.
func (s *Storage) ListClientsByPhones(ctx context.Context, phones []string) ([]models.ClientRecord, error) {
	const op = "storage.ListClientsByPhones"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if len(phones) == 0 {
		return nil, nil
	}
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE phone_number IN (` + placeholders(1, len(phones)) + `)
		ORDER BY created_at, id`
	return s.queryClients(ctx, op, query, stringArgs(phones)...)
}

// FindClientsBySuffix возвращает записи, номер которых заканчивается на suffix.
func (s *Storage) FindClientsBySuffix(ctx context.Context, suffix string) ([]models.ClientRecord, error) {
	const op = "storage.FindClientsBySuffix"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := `SELECT ` + clientColumns + ` FROM clients
		WHERE phone_number LIKE '%' || $1
		ORDER BY created_at, id`
	return s.queryClients(ctx, op, query, suffix)
}

// GetClient возвращает запись по идентификатору.
func (s *Storage) GetClient(ctx context.Context, id string) (models.ClientRecord, error) {
	const op = "storage.GetClient"
	if err := checkCtx(ctx, op); err != nil {
		return models.ClientRecord{}, err
	}
	row := s.DB.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ClientRecord{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return models.ClientRecord{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func progressArg(p json.RawMessage) any {
	if len(p) == 0 {
		return nil
	}
	return string(p)
}

// CreateClient сохраняет новую запись клиента и возвращает её идентификатор.
func (s *Storage) CreateClient(ctx context.Context, c models.ClientRecord) (string, error) {
	const op = "storage.CreateClient"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := `INSERT INTO clients (id, phone_number, client_name, client_password, subscriptions,
			      purchase_date, duration_months, is_debtor, override_expiration, deleted, game_progress)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10)`
	_, err := s.DB.ExecContext(ctx, query,
		id, c.PhoneNumber, c.ClientName, c.ClientPassword, c.Subscriptions,
		c.PurchaseDate, c.DurationMonths, c.IsDebtor, c.OverrideExpiration, progressArg(c.GameProgress))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateClient обновляет данные подписки записи. Пароль и прогресс игр не меняются.
func (s *Storage) UpdateClient(ctx context.Context, c models.ClientRecord) error {
	const op = "storage.UpdateClient"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE clients
			  SET phone_number = $2, client_name = $3, subscriptions = $4, purchase_date = $5,
			      duration_months = $6, is_debtor = $7, override_expiration = $8
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query,
		c.ID, c.PhoneNumber, c.ClientName, c.Subscriptions, c.PurchaseDate,
		c.DurationMonths, c.IsDebtor, c.OverrideExpiration)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SoftDeleteClient помечает запись удалённой.
func (s *Storage) SoftDeleteClient(ctx context.Context, id string) error {
	const op = "storage.SoftDeleteClient"
	return s.execOne(ctx, op, `UPDATE clients SET deleted = TRUE WHERE id = $1`, id)
}

// SetOverride включает или выключает ручное продление записи.
func (s *Storage) SetOverride(ctx context.Context, id string, override bool) error {
	const op = "storage.SetOverride"
	return s.execOne(ctx, op, `UPDATE clients SET override_expiration = $2 WHERE id = $1`, id, override)
}

// UpdateGameProgress сохраняет прогресс игр записи.
func (s *Storage) UpdateGameProgress(ctx context.Context, id string, progress json.RawMessage) error {
	const op = "storage.UpdateGameProgress"
	return s.execOne(ctx, op, `UPDATE clients SET game_progress = $2 WHERE id = $1`, id, progressArg(progress))
}

// UpdateClientName меняет имя во всех записях с указанными номерами.
func (s *Storage) UpdateClientName(ctx context.Context, phones []string, name string) (int64, error) {
	const op = "storage.UpdateClientName"
	return s.execPhones(ctx, op, `UPDATE clients SET client_name = $1`, name, phones)
}

// SetClientPassword сохраняет пароль во всех записях с указанными номерами.
func (s *Storage) SetClientPassword(ctx context.Context, phones []string, passwordHash string) (int64, error) {
	const op = "storage.SetClientPassword"
	return s.execPhones(ctx, op, `UPDATE clients SET client_password = $1`, passwordHash, phones)
}

// ResetAllPasswords очищает пароли всех клиентов.
func (s *Storage) ResetAllPasswords(ctx context.Context) (int64, error) {
	const op = "storage.ResetAllPasswords"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx, `UPDATE clients SET client_password = '' WHERE client_password <> ''`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (s *Storage) execOne(ctx context.Context, op, query string, args ...any) error {
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = affected(res); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) execPhones(ctx context.Context, op, update string, value string, phones []string) (int64, error) {
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	if len(phones) == 0 {
		return 0, nil
	}
	query := update + ` WHERE phone_number IN (` + placeholders(2, len(phones)) + `)`
	args := append([]any{value}, stringArgs(phones)...)
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}
