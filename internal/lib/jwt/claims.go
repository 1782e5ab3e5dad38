// Package jwt выпускает и проверяет JWT токены клиентов и администраторов.
package jwt

import (
	"time"
)

// Роли, записываемые в токен.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Maker описывает генерацию и парсинг JWT токенов.
//
// login для клиента это нормализованный номер телефона, для администратора имя пользователя.
type Maker interface {
	GenerateToken(login, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
