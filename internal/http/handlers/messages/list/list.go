// Package list реализует HTTP-обработчик списка сообщений обратной связи.
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

// Handler возвращает сообщения, новые первыми.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	List(ctx context.Context) ([]*models.Message, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список сообщений
// @Tags Messages
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.messages.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	msgs, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list messages", sl.Err(err))
		response.Fail(w, r, err, "could not list messages")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(msgs))
}
