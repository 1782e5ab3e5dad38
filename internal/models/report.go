package models

import "time"

// Stats сводка для панели администратора.
type Stats struct {
	TotalClients  int     `json:"total_clients"`
	ActiveClients int     `json:"active_clients"`
	TotalRevenue  float64 `json:"total_revenue"`
	ExpiringSoon  int     `json:"expiring_soon"`
	Debtors       int     `json:"debtors"`
}

// ExpiringClient строка отчёта об истекающих подписках.
type ExpiringClient struct {
	ID          string    `json:"id"`
	PhoneNumber string    `json:"phone_number"`
	ClientName  string    `json:"client_name"`
	Expiry      time.Time `json:"expiry"`
	DaysLeft    int       `json:"days_left"`
}

// CredentialAlertMessage уведомление о скорой ротации общих учётных данных.
type CredentialAlertMessage struct {
	CredentialID string    `json:"credential_id"`
	Service      string    `json:"service"`
	Email        string    `json:"email"`
	PublishedAt  time.Time `json:"published_at"`
	AgeDays      int       `json:"age_days"`
	Alert        string    `json:"alert"`
	AssignedTo   int       `json:"assigned_to"`
}

// ExpiringClientMessage уведомление о клиенте, у которого заканчивается подписка.
type ExpiringClientMessage struct {
	PhoneNumber string    `json:"phone_number"`
	ClientName  string    `json:"client_name"`
	Service     string    `json:"service"`
	Expiry      time.Time `json:"expiry"`
	DaysLeft    int       `json:"days_left"`
}
