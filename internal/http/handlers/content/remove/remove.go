// Package remove реализует HTTP-обработчик удаления контента.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
)

// Handler удаляет элемент каталога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	DeleteContent(ctx context.Context, id int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить контент
// @Tags Content
// @Security BearerAuth
// @Param id path int true "ID контента"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Контент не найден"
// @Router /content/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.remove"
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

	if err = h.service.DeleteContent(r.Context(), id); err != nil {
		log.Error("failed to delete content", sl.Err(err))
		response.Fail(w, r, err, "could not delete content")
		return
	}

	log.Info("content deleted", slog.Int64("content_id", id))
	w.WriteHeader(http.StatusNoContent)
}
