// Package services собирает для клиента данные оплаты через Pix: сумму,
// ключ Pix и готовое сообщение для поддержки в WhatsApp. Сама оплата
// здесь не проверяется.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// Типы запроса на оплату.
const (
	TypeGift    = "gift"
	TypeNewSub  = "new_sub"
	TypeRenewal = "renewal"
	TypeSupport = "support"
)

const waBaseURL = "https://wa.me/"

var (
	// ErrUnknownType неизвестный тип запроса.
	ErrUnknownType = errors.New("unknown checkout type")
	// ErrServiceRequired для новой подписки не указан сервис.
	ErrServiceRequired = errors.New("service is required")
	// ErrClientNotFound клиент не найден.
	ErrClientNotFound = errors.New("client not found")
)

// ClientRepository хранилище записей клиентов.
type ClientRepository interface {
	ListClientsByPhones(ctx context.Context, phones []string) ([]models.ClientRecord, error)
}

// Quote данные для оплаты. Priced равно false, если сумма согласуется с поддержкой.
type Quote struct {
	Type      string   `json:"type"`
	Services  []string `json:"services"`
	Priced    bool     `json:"priced"`
	Price     float64  `json:"price"`
	PriceText string   `json:"price_text"`
	PixKey    string   `json:"pix_key"`
	Message   string   `json:"message"`
	Link      string   `json:"link"`
}

// Service расчёт оплаты.
type Service struct {
	clients ClientRepository
	cfg     config.Storefront
	log     *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(clients ClientRepository, cfg config.Storefront, log *slog.Logger) *Service {
	return &Service{
		clients: clients,
		cfg:     cfg,
		log:     log,
	}
}

// PriceCents месячная цена сервиса в сентаво.
func (s *Service) PriceCents(service string) int64 {
	if subscription.Matches(service, "viki") {
		return toCents(s.cfg.VikiPrice)
	}
	return toCents(s.cfg.DefaultPrice)
}

func toCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FormatPrice форматирует сумму в сентаво с запятой: 1490 -> "14,90".
func FormatPrice(cents int64) string {
	return fmt.Sprintf("%d,%02d", cents/100, cents%100)
}

// Link возвращает ссылку WhatsApp на номер поддержки с готовым текстом.
func (s *Service) Link(message string) string {
	return waBaseURL + phone.Normalize(s.cfg.SupportPhone) + "?" + url.Values{"text": {message}}.Encode()
}

// Quote рассчитывает оплату для клиента. target задаёт сервис новой подписки
// или единственный продлеваемый сервис; для общего продления он пустой.
func (s *Service) Quote(ctx context.Context, rawPhone, kind, target string) (Quote, error) {
	const op = "services.Quote"

	target = strings.TrimSpace(target)
	switch kind {
	case TypeGift, TypeNewSub, TypeRenewal, TypeSupport:
	default:
		return Quote{}, ErrUnknownType
	}
	if kind == TypeNewSub && target == "" {
		return Quote{}, ErrServiceRequired
	}

	records, err := s.clients.ListClientsByPhones(ctx, phone.Probes(rawPhone))
	if err != nil {
		return Quote{}, fmt.Errorf("%s: %w", op, err)
	}
	client, ok := subscription.Merge(records)
	if !ok {
		return Quote{}, ErrClientNotFound
	}

	q := Quote{Type: kind, Services: client.Services, PixKey: s.cfg.PixKey}
	if q.Services == nil {
		q.Services = []string{}
	}
	monthly := client.Primary.DurationMonths <= 1

	var cents int64
	switch {
	case kind == TypeNewSub:
		cents, q.Priced = s.PriceCents(target), true
	case kind == TypeRenewal && monthly && target != "":
		cents, q.Priced = s.PriceCents(target), true
	case kind == TypeRenewal && monthly:
		for _, svc := range client.Services {
			cents += s.PriceCents(svc)
		}
		q.Priced = true
	}
	if q.Priced {
		q.Price = float64(cents) / 100
		q.PriceText = FormatPrice(cents)
	}

	q.Message = message(kind, target, q, client, monthly)
	q.Link = s.Link(q.Message)
	s.log.Debug("checkout quote", slog.String("type", kind), sl.Phone(client.Phone), slog.Float64("price", q.Price))
	return q, nil
}

func message(kind, target string, q Quote, client subscription.Client, monthly bool) string {
	services := strings.Join(client.Services, ", ")
	switch {
	case kind == TypeGift:
		return "Olá! Fiz um Pix de presente para a Caixinha de Natal! 🎄✨ Segue o comprovante:"
	case kind == TypeNewSub:
		return fmt.Sprintf("Olá! Quero assinar o **%s** adicionalmente. Fiz o Pix de R$ %s. Segue o comprovante (Cliente: %s):",
			target, q.PriceText, client.PhoneNumber)
	case kind == TypeRenewal && target != "" && q.Priced:
		return fmt.Sprintf("Olá! Fiz um Pix de R$ %s para renovar APENAS o meu acesso ao **%s** que venceu. Segue o comprovante (Cliente: %s):",
			q.PriceText, target, client.PhoneNumber)
	case kind == TypeRenewal:
		value := "o valor combinado"
		if q.Priced {
			value = "R$ " + q.PriceText
		}
		return fmt.Sprintf("Olá! Fiz um Pix referente a renovação (%s) no valor de %s. Segue o comprovante para o número %s:",
			services, value, client.PhoneNumber)
	default:
		plan := "Mensal"
		if !monthly {
			plan = "Trimestral/Anual"
		}
		return fmt.Sprintf("Olá! Sou do plano %s e preciso saber o valor correto para renovar minhas contas: %s.", plan, services)
	}
}
