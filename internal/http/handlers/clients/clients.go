// Package clients реализует HTTP-обработчики администратора для записей
// клиентов и отчётов.
package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	clientssvc "github.com/magabrotheeeer/storefront/internal/services/clients"
)

// DemoResponse созданный демонстрационный клиент и его пароль.
type DemoResponse struct {
	Client   models.ClientRecord `json:"client"`
	Password string              `json:"password"`
}

// Service описывает интерфейс управления клиентами.
type Service interface {
	List(ctx context.Context) ([]models.ClientRecord, error)
	Save(ctx context.Context, req models.DummyClient) (string, error)
	Delete(ctx context.Context, id string) error
	ToggleOverride(ctx context.Context, id string) (bool, error)
	CreateDemo(ctx context.Context) (models.ClientRecord, error)
	ResetPasswords(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (models.Stats, error)
	Expiring(ctx context.Context) ([]models.ExpiringClient, error)
}

// Handler обрабатывает запросы администратора к клиентам.
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

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, clientssvc.ErrNotFound):
		response.Fail(w, r, http.StatusNotFound, "client not found")
	case errors.Is(err, clientssvc.ErrInvalidDate), errors.Is(err, clientssvc.ErrInvalidPhone):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Error("clients request failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// List godoc
// @Summary Все записи клиентов
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ClientRecord
// @Router /admin/clients [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.List")

	records, err := h.service.List(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(records))
}

// Save godoc
// @Summary Создание или изменение записи клиента
// @Description Без id создаётся новая запись, с id изменяется существующая.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyClient true "Запись клиента"
// @Success 200 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse "Неверная дата или номер"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Router /admin/clients [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.Save")

	var req models.DummyClient
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	id, err := h.service.Save(r.Context(), req)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("client saved", slog.String("id", id), sl.Phone(req.PhoneNumber))
	render.JSON(w, r, response.StatusOKWithData(map[string]string{"id": id}))
}

// Delete godoc
// @Summary Мягкое удаление записи клиента
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Router /admin/clients/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.Delete")
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("client deleted", slog.String("id", id))
	render.JSON(w, r, response.OK())
}

// ToggleOverride godoc
// @Summary Переключение ручного продления
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Router /admin/clients/{id}/override [post]
func (h *Handler) ToggleOverride(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.ToggleOverride")
	id := chi.URLParam(r, "id")

	value, err := h.service.ToggleOverride(r.Context(), id)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("override toggled", slog.String("id", id), slog.Bool("override", value))
	render.JSON(w, r, response.StatusOKWithData(map[string]bool{"override_expiration": value}))
}

// Demo godoc
// @Summary Создание демонстрационного клиента
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 201 {object} DemoResponse
// @Router /admin/clients/demo [post]
func (h *Handler) Demo(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.Demo")

	record, err := h.service.CreateDemo(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("demo client created", slog.String("id", record.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(DemoResponse{Client: record, Password: clientssvc.DemoPassword}))
}

// ResetPasswords godoc
// @Summary Сброс паролей всех клиентов
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Router /admin/clients/reset-passwords [post]
func (h *Handler) ResetPasswords(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.ResetPasswords")

	n, err := h.service.ResetPasswords(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Warn("all client passwords reset", slog.Int64("rows", n))
	render.JSON(w, r, response.StatusOKWithData(map[string]int64{"reset": n}))
}

// Stats godoc
// @Summary Сводка для панели администратора
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Stats
// @Router /admin/reports/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.Stats")

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(stats))
}

// Expiring godoc
// @Summary Отчёт об истекающих подписках
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ExpiringClient
// @Router /admin/reports/expiring [get]
func (h *Handler) Expiring(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clients.Expiring")

	rows, err := h.service.Expiring(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(rows))
}
