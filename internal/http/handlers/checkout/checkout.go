// Package checkout реализует HTTP-обработчик расчёта оплаты через Pix.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	checkoutsvc "github.com/magabrotheeeer/storefront/internal/services/checkout"
)

// Service описывает интерфейс расчёта оплаты.
type Service interface {
	Quote(ctx context.Context, rawPhone, kind, target string) (checkoutsvc.Quote, error)
}

// Handler обрабатывает запрос расчёта оплаты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Расчёт оплаты
// @Description Возвращает сумму, ключ Pix и готовое сообщение для поддержки.
// @Tags Checkout
// @Produce json
// @Security BearerAuth
// @Param type query string true "gift, new_sub, renewal или support"
// @Param service query string false "Сервис для new_sub и renewal"
// @Success 200 {object} checkoutsvc.Quote
// @Failure 400 {object} response.ErrorResponse "Неизвестный тип оплаты"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Router /checkout/quote [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.Quote"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	phone, ok := middlewarectx.LoginFromContext(r.Context())
	if !ok {
		log.Error("client identification missing")
		response.Fail(w, r, http.StatusUnauthorized, "client identification missing")
		return
	}

	kind := r.URL.Query().Get("type")
	target := r.URL.Query().Get("service")

	quote, err := h.service.Quote(r.Context(), phone, kind, target)
	switch {
	case err == nil:
	case errors.Is(err, checkoutsvc.ErrUnknownType), errors.Is(err, checkoutsvc.ErrServiceRequired):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, checkoutsvc.ErrClientNotFound):
		response.Fail(w, r, http.StatusNotFound, "client not found")
		return
	default:
		log.Error("failed to build quote", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("quote built", sl.Phone(phone), slog.String("type", kind), slog.Bool("priced", quote.Priced))
	render.JSON(w, r, response.StatusOKWithData(quote))
}
