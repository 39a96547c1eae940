// Package remove реализует HTTP-обработчик удаления сообщения.
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

// Handler удаляет сообщение.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	Delete(ctx context.Context, id int64) (int64, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить сообщение
// @Tags Messages
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID сообщения"
// @Success 200 {object} response.Response
// @Router /messages/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.remove"
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

	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		log.Error("failed to delete message", sl.Err(err))
		response.Fail(w, r, err, "could not delete message")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]int64{"deleted": deleted}))
}
