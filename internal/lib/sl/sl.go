// Package sl содержит вспомогательные функции для работы с логгером slog.
package sl

import (
	"log/slog"

	"github.com/magabrotheeeer/storefront/internal/lib/phone"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
//
// Пример:
//
//	log.Error("failed to load credentials", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Phone возвращает slog.Attr с замаскированным номером клиента,
// чтобы полные номера не попадали в логи.
func Phone(raw string) slog.Attr {
	return slog.String("phone", phone.Mask(raw))
}
