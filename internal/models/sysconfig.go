package models

// Типы баннера.
const (
	BannerInfo    = "info"
	BannerWarning = "warning"
	BannerError   = "error"
	BannerSuccess = "success"
)

// SystemConfig глобальный баннер и статусы сервисов, отображаемые всем клиентам.
// Хранится JSON-строкой в служебной строке SYSTEM_CONFIG таблицы учётных данных.
type SystemConfig struct {
	BannerText    string            `json:"bannerText"`
	BannerType    string            `json:"bannerType" validate:"omitempty,oneof=info warning error success"`
	BannerActive  bool              `json:"bannerActive"`
	ServiceStatus map[string]string `json:"serviceStatus"`
}

// DefaultSystemConfig возвращает конфигурацию, используемую при отсутствии сохранённой.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		BannerType: BannerInfo,
		ServiceStatus: map[string]string{
			"Viki Pass": "ok",
			"Kocowa+":   "ok",
			"IQIYI":     "ok",
			"WeTV":      "ok",
		},
	}
}
