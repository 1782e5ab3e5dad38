// Package credential строит пул общих учётных данных сервиса: видимые записи,
// подходящие под название сервиса, упорядоченные от самых старых к новым.
package credential

import (
	"sort"

	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// WithoutSentinel убирает служебную строку SYSTEM_CONFIG из списка учётных данных.
func WithoutSentinel(all []models.Credential) []models.Credential {
	out := make([]models.Credential, 0, len(all))
	for _, c := range all {
		if !c.IsSystemConfig() {
			out = append(out, c)
		}
	}
	return out
}

// ListVisible возвращает пул сервиса: только видимые записи, название которых
// содержит service без учёта регистра, отсортированные по PublishedAt по возрастанию.
// Сортировка устойчивая: записи с одинаковой датой сохраняют порядок хранилища.
func ListVisible(all []models.Credential, service string) []models.Credential {
	pool := make([]models.Credential, 0)
	for _, c := range all {
		if !c.IsVisible || c.IsSystemConfig() {
			continue
		}
		if subscription.Matches(c.Service, service) {
			pool = append(pool, c)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].PublishedAt.Before(pool[j].PublishedAt)
	})
	return pool
}

// IndexOf возвращает позицию учётных данных в пуле или -1.
func IndexOf(pool []models.Credential, id string) int {
	for i, c := range pool {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Find ищет учётные данные по идентификатору.
func Find(all []models.Credential, id string) (models.Credential, bool) {
	for _, c := range all {
		if c.ID == id {
			return c, true
		}
	}
	return models.Credential{}, false
}
