// Package models содержит доменные структуры витрины: записи клиентов,
// общие учётные данные сервисов, списки дорам и служебные сообщения.
package models

import (
	"encoding/json"
	"time"
)

// ClientRecord представляет одну строку таблицы clients.
//
// Продление подписки создаёт новую строку, поэтому один клиент (номер телефона)
// может быть представлен несколькими записями. Удаление мягкое: Deleted = true.
type ClientRecord struct {
	ID                 string          `json:"id"`
	PhoneNumber        string          `json:"phone_number" validate:"required"`
	ClientName         string          `json:"client_name"`
	ClientPassword     string          `json:"-"`
	Subscriptions      ServiceList     `json:"subscriptions"`
	PurchaseDate       time.Time       `json:"purchase_date"`
	DurationMonths     int             `json:"duration_months" validate:"gte=0"`
	IsDebtor           bool            `json:"is_debtor"`
	OverrideExpiration bool            `json:"override_expiration"`
	Deleted            bool            `json:"deleted"`
	GameProgress       json.RawMessage `json:"game_progress,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// HasPassword сообщает, задан ли пароль у записи.
func (r ClientRecord) HasPassword() bool {
	return r.ClientPassword != ""
}

// DummyClient используется для приёма данных клиента из JSON-запроса администратора.
// Дата покупки приходит строкой в формате 2006-01-02.
type DummyClient struct {
	ID                 string      `json:"id"`
	PhoneNumber        string      `json:"phone_number" validate:"required"`
	ClientName         string      `json:"client_name"`
	Subscriptions      ServiceList `json:"subscriptions"`
	PurchaseDate       string      `json:"purchase_date" validate:"required"`
	DurationMonths     int         `json:"duration_months" validate:"gte=0"`
	IsDebtor           bool        `json:"is_debtor"`
	OverrideExpiration bool        `json:"override_expiration"`
}

// LoginStatus результат поиска клиента по последним цифрам номера.
type LoginStatus struct {
	Exists       bool     `json:"exists"`
	HasPassword  bool     `json:"has_password"`
	PhoneMatches []string `json:"phone_matches"`
}

// AdminUser учётная запись администратора.
type AdminUser struct {
	Username     string
	PasswordHash string
}
