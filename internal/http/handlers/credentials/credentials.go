// Package credentials реализует HTTP-обработчики администратора для общих
// учётных данных сервисов и их распределения по клиентам.
package credentials

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/assignment"
	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	credentialssvc "github.com/magabrotheeeer/storefront/internal/services/credentials"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// Service описывает интерфейс управления учётными данными.
type Service interface {
	List(ctx context.Context) ([]models.Credential, error)
	Create(ctx context.Context, req models.DummyCredential) (string, error)
	Update(ctx context.Context, id string, req models.DummyCredential) error
	Delete(ctx context.Context, id string) error
	BulkImport(ctx context.Context, req models.DummyBulkCredentials) (int, error)
	AssignedUsers(ctx context.Context, id string) ([]subscription.Client, error)
	Usage(ctx context.Context) ([]credentialssvc.Usage, error)
	Plan(ctx context.Context, service string) ([]assignment.Slot, error)
}

// Handler обрабатывает запросы администратора к учётным данным.
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
	case errors.Is(err, credentialssvc.ErrNotFound):
		response.Fail(w, r, http.StatusNotFound, "credential not found")
	case errors.Is(err, credentialssvc.ErrReservedService),
		errors.Is(err, credentialssvc.ErrInvalidDate),
		errors.Is(err, credentialssvc.ErrNothingToImport):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Error("credentials request failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// List godoc
// @Summary Все учётные данные
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Credential
// @Router /admin/credentials [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.List")

	creds, err := h.service.List(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(creds))
}

// Create godoc
// @Summary Добавление учётных данных
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyCredential true "Учётные данные"
// @Success 201 {object} map[string]string
// @Failure 400 {object} response.ErrorResponse "Зарезервированный сервис или неверная дата"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/credentials [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Create")

	var req models.DummyCredential
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	id, err := h.service.Create(r.Context(), req)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("credential created", slog.String("id", id), slog.String("service", req.Service))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]string{"id": id}))
}

// Update godoc
// @Summary Изменение учётных данных
// @Description Также используется для скрытия и показа учётных данных через is_visible.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID учётных данных"
// @Param request body models.DummyCredential true "Учётные данные"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Не найдены"
// @Router /admin/credentials/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Update")
	id := chi.URLParam(r, "id")

	var req models.DummyCredential
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.Update(r.Context(), id, req); err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("credential updated", slog.String("id", id))
	render.JSON(w, r, response.OK())
}

// Delete godoc
// @Summary Удаление учётных данных
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID учётных данных"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Не найдены"
// @Router /admin/credentials/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Delete")
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("credential deleted", slog.String("id", id))
	render.JSON(w, r, response.OK())
}

// Bulk godoc
// @Summary Пакетная загрузка учётных данных
// @Description Строки вида email:senha, разделители : | ; или пробел.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyBulkCredentials true "Сервис и текст"
// @Success 201 {object} map[string]int
// @Failure 400 {object} response.ErrorResponse "Нет пар email/пароль"
// @Router /admin/credentials/bulk [post]
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Bulk")

	var req models.DummyBulkCredentials
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	n, err := h.service.BulkImport(r.Context(), req)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("credentials imported", slog.String("service", req.Service), slog.Int("count", n))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]int{"imported": n}))
}

// Users godoc
// @Summary Клиенты, получившие учётные данные
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID учётных данных"
// @Success 200 {array} subscription.Client
// @Failure 404 {object} response.ErrorResponse "Не найдены"
// @Router /admin/credentials/{id}/users [get]
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Users")

	clients, err := h.service.AssignedUsers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(clients))
}

// Counts godoc
// @Summary Число клиентов на каждых учётных данных
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} credentialssvc.Usage
// @Router /admin/credentials/counts [get]
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Counts")

	usage, err := h.service.Usage(r.Context())
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(usage))
}

// Plan godoc
// @Summary Распределение учётных данных сервиса
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param service path string true "Название сервиса"
// @Success 200 {array} assignment.Slot
// @Router /admin/assignments/{service} [get]
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.credentials.Plan")

	service := chi.URLParam(r, "service")
	if v, err := url.PathUnescape(service); err == nil {
		service = v
	}

	slots, err := h.service.Plan(r.Context(), service)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("assignment plan built", slog.String("service", service), slog.Int("slots", len(slots)))
	render.JSON(w, r, response.StatusOKWithData(slots))
}
