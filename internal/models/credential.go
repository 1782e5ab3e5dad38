package models

import "time"

// SystemConfigService зарезервированное значение service, под которым в таблице
// учётных данных хранится глобальная конфигурация витрины. Эта строка никогда
// не является настоящими учётными данными.
const SystemConfigService = "SYSTEM_CONFIG"

// Credential общий логин (email и пароль) одного стримингового сервиса.
type Credential struct {
	ID          string    `json:"id"`
	Service     string    `json:"service"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	PublishedAt time.Time `json:"published_at"`
	IsVisible   bool      `json:"is_visible"`
}

// IsSystemConfig сообщает, является ли запись служебной строкой конфигурации.
func (c Credential) IsSystemConfig() bool {
	return c.Service == SystemConfigService
}

// DummyCredential используется для приёма учётных данных из JSON-запроса.
type DummyCredential struct {
	Service     string `json:"service" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	PublishedAt string `json:"published_at"`
	IsVisible   *bool  `json:"is_visible"`
}

// DummyBulkCredentials пакетная загрузка: по одной паре email/пароль в строке.
type DummyBulkCredentials struct {
	Service     string `json:"service" validate:"required"`
	Text        string `json:"text" validate:"required"`
	PublishedAt string `json:"published_at"`
}
