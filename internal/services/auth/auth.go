// Package services содержит логику входа клиентов и администраторов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/lib/password"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/storage"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// SuffixLength число последних цифр номера, по которым клиент начинает вход.
const SuffixLength = 4

// Ограничение поиска по последним цифрам номера.
const (
	lookupLimit  = 20
	lookupWindow = time.Minute
)

var (
	// ErrInvalidSuffix введено не ровно SuffixLength цифр.
	ErrInvalidSuffix = errors.New("suffix must contain exactly 4 digits")
	// ErrTooManyAttempts превышен лимит поиска по последним цифрам.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrClientNotFound клиента с таким номером нет.
	ErrClientNotFound = errors.New("client not found")
	// ErrAccessRevoked все записи клиента удалены.
	ErrAccessRevoked = errors.New("access revoked")
	// ErrInvalidCredentials пароль не подошёл.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordAlreadySet пароль уже задан, повторная регистрация запрещена.
	ErrPasswordAlreadySet = errors.New("password already set")
	// ErrEmptyPassword пустой пароль.
	ErrEmptyPassword = errors.New("empty password")
)

// ClientRepository описывает операции с записями клиентов, нужные для входа.
type ClientRepository interface {
	FindClientsBySuffix(ctx context.Context, suffix string) ([]models.ClientRecord, error)
	ListClientsByPhones(ctx context.Context, phones []string) ([]models.ClientRecord, error)
	SetClientPassword(ctx context.Context, phones []string, passwordHash string) (int64, error)
}

// AdminRepository описывает чтение учётных записей администраторов.
type AdminRepository interface {
	GetAdmin(ctx context.Context, username string) (models.AdminUser, error)
}

// Limiter ограничивает частоту операций по ключу.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
}

// AuthService отвечает за поиск клиента, регистрацию пароля и выпуск JWT.
type AuthService struct {
	clients  ClientRepository
	admins   AdminRepository
	limiter  Limiter
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(clients ClientRepository, admins AdminRepository, limiter Limiter, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		clients:  clients,
		admins:   admins,
		limiter:  limiter,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// CheckUserStatus ищет неудалённые записи, номер которых оканчивается на suffix.
// Ненайденный клиент не является ошибкой: Exists = false.
func (s *AuthService) CheckUserStatus(ctx context.Context, suffix string) (models.LoginStatus, error) {
	const op = "services.CheckUserStatus"
	status := models.LoginStatus{PhoneMatches: []string{}}

	suffix = strings.TrimSpace(suffix)
	if len(suffix) != SuffixLength || phone.Normalize(suffix) != suffix {
		return status, ErrInvalidSuffix
	}

	allowed, err := s.limiter.Allow(ctx, cache.LoginAttemptsKey(suffix), lookupLimit, lookupWindow)
	if err != nil {
		s.log.Warn("login limiter unavailable", sl.Err(err))
	} else if !allowed {
		return status, ErrTooManyAttempts
	}

	records, err := s.clients.FindClientsBySuffix(ctx, suffix)
	if err != nil {
		return status, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Deleted {
			continue
		}
		status.Exists = true
		if strings.TrimSpace(r.ClientPassword) != "" {
			status.HasPassword = true
		}
		if _, ok := seen[r.PhoneNumber]; ok {
			continue
		}
		seen[r.PhoneNumber] = struct{}{}
		status.PhoneMatches = append(status.PhoneMatches, r.PhoneNumber)
	}
	return status, nil
}

// RegisterPassword задаёт пароль во всех записях клиента и выпускает токен.
func (s *AuthService) RegisterPassword(ctx context.Context, rawPhone, rawPassword string) (string, subscription.Client, error) {
	const op = "services.RegisterPassword"

	rawPassword = strings.TrimSpace(rawPassword)
	if rawPassword == "" {
		return "", subscription.Client{}, ErrEmptyPassword
	}
	probes := phone.Probes(rawPhone)
	records, err := s.clients.ListClientsByPhones(ctx, probes)
	if err != nil {
		return "", subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	client, err := activeClient(records)
	if err != nil {
		return "", subscription.Client{}, err
	}
	if client.HasPassword {
		return "", subscription.Client{}, ErrPasswordAlreadySet
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	n, err := s.clients.SetClientPassword(ctx, probes, hashed)
	if err != nil {
		return "", subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return "", subscription.Client{}, ErrClientNotFound
	}
	client.HasPassword = true

	token, err := s.jwtMaker.GenerateToken(client.Phone, jwt.RoleClient)
	if err != nil {
		return "", subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("client password registered", sl.Phone(client.Phone))
	return token, client, nil
}

// Login проверяет пароль клиента. Пароль сверяется с каждой неудалённой записью,
// поэтому старые строки продления без пароля не блокируют вход.
func (s *AuthService) Login(ctx context.Context, rawPhone, rawPassword string) (string, subscription.Client, error) {
	const op = "services.Login"

	records, err := s.clients.ListClientsByPhones(ctx, phone.Probes(rawPhone))
	if err != nil {
		return "", subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	client, err := activeClient(records)
	if err != nil {
		return "", subscription.Client{}, err
	}

	rawPassword = strings.TrimSpace(rawPassword)
	valid := false
	for _, r := range records {
		if !r.Deleted && password.Matches(strings.TrimSpace(r.ClientPassword), rawPassword) {
			valid = true
			break
		}
	}
	if !valid {
		return "", subscription.Client{}, ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(client.Phone, jwt.RoleClient)
	if err != nil {
		return "", subscription.Client{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, client, nil
}

// AdminLogin проверяет пароль администратора и выпускает токен с ролью admin.
func (s *AuthService) AdminLogin(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "services.AdminLogin"

	admin, err := s.admins.GetAdmin(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !password.Matches(admin.PasswordHash, rawPassword) {
		s.log.Warn("admin login failed", slog.String("username", username))
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.GenerateToken(admin.Username, jwt.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ParseToken проверяет JWT и возвращает его claims.
func (s *AuthService) ParseToken(token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

func activeClient(records []models.ClientRecord) (subscription.Client, error) {
	if len(records) == 0 {
		return subscription.Client{}, ErrClientNotFound
	}
	client, ok := subscription.Merge(records)
	if !ok {
		return subscription.Client{}, ErrAccessRevoked
	}
	return client, nil
}
