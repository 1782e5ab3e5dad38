// Package subscription сводит несколько сырых записей одного клиента
// (строки с одинаковым номером телефона) в одного логического клиента.
//
// Для каждого сервиса выбирается пара (дата покупки, длительность), дающая
// самую позднюю дату окончания: старая строка продления не может перекрыть новую.
package subscription

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/magabrotheeeer/storefront/internal/lib/month"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// DefaultName имя, показываемое клиенту, если ни одна запись его не содержит.
const DefaultName = "Dorameira"

// Detail срок подписки на конкретный сервис.
type Detail struct {
	PurchaseDate   time.Time `json:"purchase_date"`
	DurationMonths int       `json:"duration_months"`
}

// Expiry возвращает дату окончания подписки.
func (d Detail) Expiry() time.Time {
	return month.Add(d.PurchaseDate, d.DurationMonths)
}

// Client логический клиент, собранный из всех неудалённых записей с одним номером.
type Client struct {
	ID                 string            `json:"id"`
	Phone              string            `json:"phone"`
	PhoneNumber        string            `json:"phone_number"`
	Name               string            `json:"name"`
	Services           []string          `json:"services"`
	Details            map[string]Detail `json:"subscription_details"`
	Primary            Detail            `json:"primary"`
	IsDebtor           bool              `json:"is_debtor"`
	OverrideExpiration bool              `json:"override_expiration"`
	HasPassword        bool              `json:"has_password"`
	GameProgress       json.RawMessage   `json:"game_progress,omitempty"`
}

// Detail возвращает срок подписки на сервис. Если для сервиса нет отдельной
// записи, используется срок основной записи.
func (c Client) Detail(service string) Detail {
	if d, ok := c.Details[service]; ok {
		return d
	}
	for name, d := range c.Details {
		if strings.EqualFold(name, service) {
			return d
		}
	}
	return c.Primary
}

// HasService сообщает, подписан ли клиент на сервис
// (регистронезависимое вхождение подстроки).
func (c Client) HasService(service string) bool {
	return MatchesAny(c.Services, service)
}

// Matches сообщает, содержит ли название сервиса искомую подстроку без учёта регистра.
func Matches(name, service string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(service))
}

// MatchesAny сообщает, подходит ли под сервис хотя бы одно название из списка.
func MatchesAny(names []string, service string) bool {
	for _, name := range names {
		if Matches(name, service) {
			return true
		}
	}
	return false
}

// Merge сводит записи одного клиента. Удалённые записи пропускаются;
// если неудалённых записей нет, второй результат равен false.
// Сервисы различаются без учёта регистра, сохраняется первое написание.
func Merge(records []models.ClientRecord) (Client, bool) {
	var (
		client    Client
		bestFound bool
		bestExp   time.Time
	)
	client.Name = DefaultName
	client.Details = make(map[string]Detail)
	seen := make(map[string]string)

	for _, rec := range records {
		if rec.Deleted {
			continue
		}
		if rec.ClientName != "" {
			client.Name = rec.ClientName
		}
		if rec.HasPassword() {
			client.HasPassword = true
		}

		current := Detail{PurchaseDate: rec.PurchaseDate, DurationMonths: rec.DurationMonths}
		exp := current.Expiry()

		for _, svc := range rec.Subscriptions {
			svc = strings.TrimSpace(svc)
			if svc == "" {
				continue
			}
			key := strings.ToLower(svc)
			if first, ok := seen[key]; ok {
				svc = first
			} else {
				seen[key] = svc
				client.Services = append(client.Services, svc)
			}
			stored, ok := client.Details[svc]
			if !ok || exp.After(stored.Expiry()) {
				client.Details[svc] = current
			}
		}

		client.IsDebtor = client.IsDebtor || rec.IsDebtor
		client.OverrideExpiration = client.OverrideExpiration || rec.OverrideExpiration

		if !bestFound || exp.After(bestExp) {
			bestFound = true
			bestExp = exp
			client.ID = rec.ID
			client.PhoneNumber = rec.PhoneNumber
			client.Primary = current
			client.GameProgress = rec.GameProgress
		}
	}
	if !bestFound {
		return Client{}, false
	}
	client.Phone = phone.Normalize(client.PhoneNumber)
	return client, true
}

// GroupByPhone разбивает всю таблицу клиентов по нормализованному номеру и
// сводит каждую группу. Результат отсортирован по нормализованному номеру.
func GroupByPhone(records []models.ClientRecord) []Client {
	groups := make(map[string][]models.ClientRecord)
	order := make([]string, 0)
	for _, rec := range records {
		key := phone.Normalize(rec.PhoneNumber)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}
	sort.Strings(order)

	clients := make([]Client, 0, len(order))
	for _, key := range order {
		if c, ok := Merge(groups[key]); ok {
			clients = append(clients, c)
		}
	}
	return clients
}

// Find ищет клиента по номеру с учётом вариантов записи кода страны.
func Find(clients []Client, raw string) (Client, bool) {
	for _, variant := range phone.Variants(raw) {
		for _, c := range clients {
			if c.Phone == variant {
				return c, true
			}
		}
	}
	return Client{}, false
}
