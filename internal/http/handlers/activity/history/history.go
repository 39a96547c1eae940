// Package history реализует выдачу истории активности пользователя.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Handler возвращает журнал активности, новые записи первыми.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	History(ctx context.Context, userID int64) ([]*models.ActivityLog, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История активности
// @Tags Activity
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response
// @Router /activity/user/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activity.history"
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

	entries, err := h.service.History(r.Context(), id)
	if err != nil {
		log.Error("failed to read history", sl.Err(err))
		response.Fail(w, r, err, "could not read activity history")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(entries))
}
