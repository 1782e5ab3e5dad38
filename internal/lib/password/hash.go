// Package password реализует хеширование и проверку паролей клиентов и администраторов.
//
// Старые записи клиентов могли сохранить пароль в открытом виде, поэтому Matches
// принимает как bcrypt-хеш, так и незахешированное значение.
package password

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// GetHash принимает пароль и возвращает его bcrypt‑хэш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе ошибку.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsHash сообщает, похоже ли сохранённое значение на bcrypt-хеш.
func IsHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}

// Matches проверяет введённый пароль против сохранённого значения.
// Пустой сохранённый пароль не совпадает ни с чем.
func Matches(stored, input string) bool {
	if stored == "" {
		return false
	}
	if IsHash(stored) {
		return CompareHash(stored, input) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(input)) == 1
}
