// Package list реализует HTTP-обработчик списка контента.
package list

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

// Handler возвращает весь каталог.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	ListContent(ctx context.Context) ([]*models.Content, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список контента
// @Tags Content
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /content [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.service.ListContent(r.Context())
	if err != nil {
		log.Error("failed to list content", sl.Err(err))
		response.Fail(w, r, err, "could not list content")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(items))
}
