// Package watchlist реализует HTTP-обработчики списков дорам клиента.
package watchlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/http/request"
	"github.com/magabrotheeeer/storefront/internal/http/response"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/models"
	watchlistsvc "github.com/magabrotheeeer/storefront/internal/services/watchlist"
)

// AddRequest дорама и список, в который её добавляют.
type AddRequest struct {
	List   string        `json:"list" validate:"required,oneof=watching favorites completed"`
	Dorama models.Dorama `json:"dorama"`
}

// UpdateRequest прогресс просмотра. Пустые поля берутся из сохранённой записи
// или значений по умолчанию.
type UpdateRequest struct {
	Title           string `json:"title"`
	Genre           string `json:"genre"`
	Thumbnail       string `json:"thumbnail"`
	Status          string `json:"status"`
	EpisodesWatched int    `json:"episodes_watched" validate:"gte=0"`
	TotalEpisodes   int    `json:"total_episodes" validate:"gte=0"`
	Season          int    `json:"season" validate:"gte=0"`
	Rating          int    `json:"rating" validate:"gte=0"`
}

// Service описывает интерфейс списков дорам.
type Service interface {
	List(ctx context.Context, rawPhone string) (models.DoramaLists, error)
	Add(ctx context.Context, rawPhone, list string, d models.Dorama) (models.Dorama, error)
	Update(ctx context.Context, rawPhone string, d models.Dorama) (models.Dorama, error)
	Remove(ctx context.Context, rawPhone, id string) error
}

// Handler обрабатывает запросы списков дорам.
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
	case errors.Is(err, watchlistsvc.ErrUnknownList), errors.Is(err, watchlistsvc.ErrEmptyTitle):
		response.Fail(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, watchlistsvc.ErrNotFound):
		response.Fail(w, r, http.StatusNotFound, "dorama not found")
	default:
		log.Error("watch list request failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, "internal error")
	}
}

// List godoc
// @Summary Списки дорам клиента
// @Tags Doramas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DoramaLists
// @Router /me/doramas [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.watchlist.List")
	if !ok {
		return
	}

	lists, err := h.service.List(r.Context(), phone)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(lists))
}

// Add godoc
// @Summary Добавление дорамы в список
// @Tags Doramas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddRequest true "Список и дорама"
// @Success 201 {object} models.Dorama
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /me/doramas [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.watchlist.Add")
	if !ok {
		return
	}

	var req AddRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	d, err := h.service.Add(r.Context(), phone, req.List, req.Dorama)
	if err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("dorama added", slog.String("id", d.ID), slog.String("list", req.List))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(d))
}

// Update godoc
// @Summary Обновление прогресса дорамы
// @Tags Doramas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID дорамы"
// @Param request body UpdateRequest true "Прогресс"
// @Success 200 {object} models.Dorama
// @Failure 404 {object} response.ErrorResponse "Дорама не найдена"
// @Router /me/doramas/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.watchlist.Update")
	if !ok {
		return
	}

	var req UpdateRequest
	if !request.Decode(w, r, log, h.validate, &req) {
		return
	}

	d, err := h.service.Update(r.Context(), phone, models.Dorama{
		ID:              chi.URLParam(r, "id"),
		Title:           req.Title,
		Genre:           req.Genre,
		Thumbnail:       req.Thumbnail,
		Status:          req.Status,
		EpisodesWatched: req.EpisodesWatched,
		TotalEpisodes:   req.TotalEpisodes,
		Season:          req.Season,
		Rating:          req.Rating,
	})
	if err != nil {
		fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(d))
}

// Remove godoc
// @Summary Удаление дорамы
// @Tags Doramas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID дорамы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Дорама не найдена"
// @Router /me/doramas/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log, phone, ok := h.client(w, r, "handlers.watchlist.Remove")
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), phone, id); err != nil {
		fail(w, r, log, err)
		return
	}
	log.Info("dorama removed", slog.String("id", id))
	render.JSON(w, r, response.OK())
}
