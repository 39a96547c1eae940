// Package read реализует получение элемента каталога с учётом уровня доступа.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Handler возвращает контент по id.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	GetContent(ctx context.Context, id int64, viewer models.Viewer) (*models.Content, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить контент
// @Description PREMIUM-контент доступен премиум-пользователям и администраторам.
// @Tags Content
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID контента"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Нужна премиум-подписка"
// @Failure 404 {object} response.ErrorResponse "Контент не найден"
// @Router /content/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := params.ID(r, "id")
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	viewer, ok := middlewarectx.Caller(r.Context())
	if !ok {
		log.Error("caller missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	content, err := h.service.GetContent(r.Context(), id, viewer)
	if err != nil {
		log.Warn("failed to read content", sl.Err(err))
		response.Fail(w, r, err, "could not read content")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(content))
}
