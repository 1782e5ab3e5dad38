// Package account реализует HTTP-обработчики кабинета клиента: профиль,
// выданные учётные данные, смену имени и сохранение прогресса игр.
//
// Номер клиента берётся из JWT токена, положенного middlewarectx.JWTMiddleware.
package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	accountsvc "github.com/magabrotheeeer/storefront/internal/services/account"
)

// RenameRequest новое имя клиента.
type RenameRequest struct {
	Name string `json:"name" validate:"required"`
}

// Service описывает интерфейс кабинета клиента.
type Service interface {
	Profile(ctx context.Context, rawPhone string) (accountsvc.Profile, error)
	Credentials(ctx context.Context, rawPhone string) ([]accountsvc.CredentialView, error)
	Credential(ctx context.Context, rawPhone, service string) (accountsvc.CredentialView, error)
	Rename(ctx context.Context, rawPhone, name string) error
	SaveGameProgress(ctx context.Context, rawPhone, gameID string, data json.RawMessage) (json.RawMessage, error)
}

// Handler обрабатывает запросы кабинета клиента.
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

// client возвращает логгер запроса и номер клиента из токена.
func (h *Handler) client(w http.ResponseWriter, r *http.Request, op string) (*slog.Logger, string, bool) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	phone, ok := middlewarectx.LoginFromContext(r.Context())
	if !ok {
		log.Error("client identification missing")
		response.Fail(w, r, http.StatusUnauthorized, "client identification missing")
		return nil, "", false
	}
	return log.With(sl.Phone(phone)), phone, true
}

func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, accountsvc.ErrClientNotFound):
		response.Fail(w, r, http.StatusNotFound, "client not found")
	case errors.Is(err, accountsvc.ErrNotSubscribed):
		response.Fail(w, r, http.StatusNotFound, "not subscribed to service")
	case errors.Is(err, accountsvc.ErrEmptyName), errors.Is(err, accountsvc.ErrInvalidProgress):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
	default:
		log.Error("account request failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// pathParam возвращает раскодированный параметр пути.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// Me godoc
// @Summary Профиль клиента
// @Description Сведённый профиль клиента со статусом подписки по каждому сервису.
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} accountsvc.Profile
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.account.Me")
	if !ok {
		return
	}

	profile, err := h.service.Profile(r.Context(), phone)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(profile))
}

// Credentials godoc
// @Summary Учётные данные клиента
// @Description Учётные данные по каждому сервису клиента. Для истёкших сервисов данные не выдаются.
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {array} accountsvc.CredentialView
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Router /me/credentials [get]
func (h *Handler) Credentials(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.account.Credentials")
	if !ok {
		return
	}

	views, err := h.service.Credentials(r.Context(), phone)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("credentials served", slog.Int("services", len(views)))
	render.JSON(w, r, response.StatusOKWithData(views))
}

// Credential godoc
// @Summary Учётные данные одного сервиса
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Param service path string true "Название сервиса"
// @Success 200 {object} accountsvc.CredentialView
// @Failure 404 {object} response.ErrorResponse "Нет подписки на сервис"
// @Router /me/credentials/{service} [get]
func (h *Handler) Credential(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.account.Credential")
	if !ok {
		return
	}
	service := pathParam(r, "service")

	view, err := h.service.Credential(r.Context(), phone, service)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(view))
}

// Rename godoc
// @Summary Смена имени клиента
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RenameRequest true "Новое имя"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /me/name [put]
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.account.Rename")
	if !ok {
		return
	}

	var req RenameRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.Rename(r.Context(), phone, req.Name); err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("client renamed")
	render.JSON(w, r, response.OK())
}

// SaveGame godoc
// @Summary Сохранение прогресса игры
// @Description Прогресс хранится как непрозрачный JSON и объединяется по идентификатору игры.
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param game path string true "Идентификатор игры"
// @Success 200 {object} map[string]any
// @Failure 400 {object} response.ErrorResponse "Некорректный прогресс"
// @Router /me/games/{game} [put]
func (h *Handler) SaveGame(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.account.SaveGame")
	if !ok {
		return
	}
	game := pathParam(r, "game")

	var data json.RawMessage
	if err := render.DecodeJSON(r.Body, &data); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	merged, err := h.service.SaveGameProgress(r.Context(), phone, game, data)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("game progress saved", slog.String("game", game))
	render.JSON(w, r, response.StatusOKWithData(merged))
}
