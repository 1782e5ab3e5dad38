// Package auth реализует HTTP-обработчики входа: поиск клиента по последним
// цифрам номера, регистрацию пароля, вход клиента и вход администратора.
package auth

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
	authsvc "github.com/magabrotheeeer/storefront/internal/services/auth"
	"github.com/magabrotheeeer/storefront/internal/subscription"
)

// CheckRequest последние цифры номера клиента.
type CheckRequest struct {
	Last4 string `json:"last4" validate:"required,len=4,numeric"`
}

// LoginRequest номер телефона и пароль клиента.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminRequest учётные данные администратора.
type AdminRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse выданный токен и сведённый профиль клиента.
type TokenResponse struct {
	Token  string               `json:"token"`
	Client *subscription.Client `json:"client,omitempty"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	CheckUserStatus(ctx context.Context, suffix string) (models.LoginStatus, error)
	RegisterPassword(ctx context.Context, rawPhone, rawPassword string) (string, subscription.Client, error)
	Login(ctx context.Context, rawPhone, rawPassword string) (string, subscription.Client, error)
	AdminLogin(ctx context.Context, username, rawPassword string) (string, error)
}

// Handler обрабатывает HTTP-запросы входа.
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

// fail переводит ошибку сервиса в HTTP-ответ.
func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidSuffix), errors.Is(err, authsvc.ErrEmptyPassword):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		response.Fail(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, authsvc.ErrAccessRevoked):
		response.Fail(w, r, http.StatusForbidden, "access revoked")
	case errors.Is(err, authsvc.ErrClientNotFound):
		response.Fail(w, r, http.StatusNotFound, "client not found")
	case errors.Is(err, authsvc.ErrPasswordAlreadySet):
		response.Fail(w, r, http.StatusConflict, "password already set")
	case errors.Is(err, authsvc.ErrTooManyAttempts):
		response.Fail(w, r, http.StatusTooManyRequests, "too many attempts")
	default:
		log.Error("auth request failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Check godoc
// @Summary Поиск клиента по последним цифрам
// @Description Возвращает, есть ли клиент с такими последними 4 цифрами номера и задан ли у него пароль.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CheckRequest true "Последние 4 цифры номера"
// @Success 200 {object} models.LoginStatus
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Router /auth/check [post]
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Check")

	var req CheckRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	status, err := h.service.CheckUserStatus(r.Context(), req.Last4)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("user status checked", slog.Bool("exists", status.Exists))
	render.JSON(w, r, response.StatusOKWithData(status))
}

// RegisterPassword godoc
// @Summary Первичная установка пароля
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Номер и новый пароль"
// @Success 200 {object} TokenResponse
// @Failure 404 {object} response.ErrorResponse "Клиент не найден"
// @Failure 409 {object} response.ErrorResponse "Пароль уже задан"
// @Router /auth/register-password [post]
func (h *Handler) RegisterPassword(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.RegisterPassword")

	var req LoginRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	token, client, err := h.service.RegisterPassword(r.Context(), req.Phone, req.Password)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("password registered", sl.Phone(client.Phone))
	render.JSON(w, r, response.StatusOKWithData(TokenResponse{Token: token, Client: &client}))
}

// Login godoc
// @Summary Вход клиента
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Номер и пароль"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 403 {object} response.ErrorResponse "Доступ отозван"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Login")

	var req LoginRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	token, client, err := h.service.Login(r.Context(), req.Phone, req.Password)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("login success", sl.Phone(client.Phone))
	render.JSON(w, r, response.StatusOKWithData(TokenResponse{Token: token, Client: &client}))
}

// Admin godoc
// @Summary Вход администратора
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body AdminRequest true "Имя и пароль администратора"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Router /auth/admin [post]
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.auth.Admin")

	var req AdminRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	token, err := h.service.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("admin login success", slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(TokenResponse{Token: token}))
}
