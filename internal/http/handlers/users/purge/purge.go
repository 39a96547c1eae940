// Package purge реализует удаление всех пользователей вместе с зависимыми данными.
package purge

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
)

// Result ответ на purge.
type Result struct {
	Deleted int64  `json:"deleted"`
	Message string `json:"message"`
}

// Handler очищает базу пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	Purge(ctx context.Context) (int64, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить всех пользователей
// @Description Доступно только SUPER_ADMIN. Удаляются все учетные записи, включая SUPER_ADMIN.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /users/purge [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.purge"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	deleted, err := h.service.Purge(r.Context())
	if err != nil {
		log.Error("failed to purge users", sl.Err(err))
		response.Fail(w, r, err, "could not purge users")
		return
	}

	log.Warn("users purged", slog.Int64("deleted", deleted))
	render.JSON(w, r, response.StatusOKWithData(Result{
		Deleted: deleted,
		Message: fmt.Sprintf("%d users deleted", deleted),
	}))
}
