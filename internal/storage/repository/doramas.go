package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
)

// ListDoramas возвращает элементы списков дорам с любым из указанных номеров.
func (s *Storage) ListDoramas(ctx context.Context, phones []string) ([]models.Dorama, error) {
	const op = "storage.ListDoramas"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	if len(phones) == 0 {
		return nil, nil
	}

	query := `SELECT id, title, genre, thumbnail, status, episodes_watched, total_episodes, season, rating
			  FROM user_doramas
			  WHERE phone_number IN (` + placeholders(1, len(phones)) + `)
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, stringArgs(phones)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Dorama
	for rows.Next() {
		var (
			d      models.Dorama
			status string
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Genre, &d.Thumbnail, &status,
			&d.EpisodesWatched, &d.TotalEpisodes, &d.Season, &d.Rating); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		d.Status = models.StatusFromDB(status)
		result = append(result, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// AddDorama добавляет элемент в список клиента и возвращает его идентификатор.
func (s *Storage) AddDorama(ctx context.Context, phone string, d models.Dorama) (string, error) {
	const op = "storage.AddDorama"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := `INSERT INTO user_doramas (id, phone_number, title, genre, thumbnail, status,
			      episodes_watched, total_episodes, season, rating)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.DB.ExecContext(ctx, query, id, phone, d.Title, d.Genre, d.Thumbnail,
		models.StatusToDB(d.Status), d.EpisodesWatched, d.TotalEpisodes, d.Season, d.Rating)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateDorama обновляет прогресс элемента, принадлежащего одному из номеров.
func (s *Storage) UpdateDorama(ctx context.Context, phones []string, d models.Dorama) error {
	const op = "storage.UpdateDorama"
	if len(phones) == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	query := `UPDATE user_doramas
			  SET status = $2, episodes_watched = $3, total_episodes = $4, season = $5, rating = $6
			  WHERE id = $1 AND phone_number IN (` + placeholders(7, len(phones)) + `)`
	args := append([]any{d.ID, models.StatusToDB(d.Status), d.EpisodesWatched, d.TotalEpisodes, d.Season, d.Rating},
		stringArgs(phones)...)
	return s.execOne(ctx, op, query, args...)
}

// RemoveDorama удаляет элемент, принадлежащий одному из номеров.
func (s *Storage) RemoveDorama(ctx context.Context, phones []string, id string) error {
	const op = "storage.RemoveDorama"
	if len(phones) == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	query := `DELETE FROM user_doramas WHERE id = $1 AND phone_number IN (` + placeholders(2, len(phones)) + `)`
	return s.execOne(ctx, op, query, append([]any{id}, stringArgs(phones)...)...)
}
