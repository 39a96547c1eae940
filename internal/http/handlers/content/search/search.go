// Package search реализует поиск по каталогу.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Handler ищет контент по типу и фильтрам.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	Search(ctx context.Context, f models.ContentFilter) ([]*models.Content, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск контента
// @Tags Content
// @Produce  json
// @Param type query string true "WORKOUT, STUDY_TIP или RECIPE"
// @Param accessLevel query string false "FREE или PREMIUM"
// @Param category query string false "Категория"
// @Param difficulty query string false "Сложность"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неизвестный тип или уровень доступа"
// @Router /content/search [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	filter := models.ContentFilter{
		ContentType:     models.ContentType(q.Get("type")),
		AccessLevel:     models.AccessLevel(q.Get("accessLevel")),
		Category:        q.Get("category"),
		DifficultyLevel: q.Get("difficulty"),
	}

	items, err := h.service.Search(r.Context(), filter)
	if err != nil {
		log.Warn("search failed", sl.Err(err))
		response.Fail(w, r, err, "could not search content")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(items))
}
