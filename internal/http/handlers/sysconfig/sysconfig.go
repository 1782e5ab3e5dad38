// Package sysconfig реализует HTTP-обработчики глобального баннера и статусов сервисов.
package sysconfig

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	sysconfigsvc "github.com/magabrotheeeer/storefront/internal/services/sysconfig"
)

// Service описывает интерфейс системной конфигурации.
type Service interface {
	Get(ctx context.Context) (models.SystemConfig, error)
	Save(ctx context.Context, cfg models.SystemConfig) (models.SystemConfig, error)
}

// Handler обрабатывает запросы системной конфигурации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// Get godoc
// @Summary Системная конфигурация
// @Description Баннер и статусы сервисов для всех клиентов. Если конфигурация не сохранена, отдаётся значение по умолчанию.
// @Tags System
// @Produce json
// @Success 200 {object} models.SystemConfig
// @Router /system/config [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sysconfig.Get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	cfg, err := h.service.Get(r.Context())
	if err != nil {
		log.Error("failed to load system config", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(cfg))
}

// Save godoc
// @Summary Сохранение системной конфигурации
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SystemConfig true "Конфигурация"
// @Success 200 {object} models.SystemConfig
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/system/config [put]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sysconfig.Save"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SystemConfig
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	cfg, err := h.service.Save(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, sysconfigsvc.ErrInvalidBannerType):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
		return
	default:
		log.Error("failed to save system config", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("system config saved", slog.Bool("banner_active", cfg.BannerActive), slog.String("banner_type", cfg.BannerType))
	render.JSON(w, r, response.StatusOKWithData(cfg))
}
