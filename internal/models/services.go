package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ServiceJoin символ, которым исторически склеивались названия сервисов в одну строку.
const ServiceJoin = "+"

// ServiceList нормализованный список названий сервисов подписки.
//
// В хранилище поле встречается в двух видах: настоящий список (JSON-массив
// или массив PostgreSQL) и строка, склеенная через "+". Оба вида приводятся
// к списку обрезанных строк без кавычек; пустые элементы отбрасываются.
type ServiceList []string

// ParseServiceList разбирает значение поля subscriptions любого поддерживаемого вида.
// Неразбираемые значения дают пустой список, а не ошибку.
func ParseServiceList(raw any) ServiceList {
	switch v := raw.(type) {
	case nil:
		return nil
	case ServiceList:
		return clean(v)
	case []string:
		return clean(v)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return clean(items)
	case []byte:
		return parseText(string(v))
	case string:
		return parseText(v)
	default:
		return nil
	}
}

func parseText(s string) ServiceList {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil
	case strings.HasPrefix(s, "["):
		var items []string
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil
		}
		return clean(items)
	case strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}"):
		return clean(strings.Split(s[1:len(s)-1], ","))
	case strings.Contains(s, ServiceJoin):
		return clean(strings.Split(s, ServiceJoin))
	default:
		return clean([]string{s})
	}
}

// clean обрезает пробелы и кавычки и убирает пустые и повторяющиеся названия.
func clean(items []string) ServiceList {
	if len(items) == 0 {
		return nil
	}
	out := make(ServiceList, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s := strings.Trim(strings.TrimSpace(item), `"`)
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Scan реализует sql.Scanner.
func (l *ServiceList) Scan(src any) error {
	*l = ParseServiceList(src)
	return nil
}

// Value реализует driver.Valuer: список сохраняется как JSON-массив.
func (l ServiceList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("models.ServiceList.Value: %w", err)
	}
	return string(b), nil
}

// UnmarshalJSON принимает как JSON-массив, так и строку через "+".
func (l *ServiceList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models.ServiceList.UnmarshalJSON: %w", err)
	}
	*l = ParseServiceList(raw)
	return nil
}

// MarshalJSON всегда отдаёт массив, даже пустой.
func (l ServiceList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}
