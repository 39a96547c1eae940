// Package update реализует HTTP-обработчик изменения контента.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/create"
	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Handler перезаписывает элемент каталога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	UpdateContent(ctx context.Context, id int64, c models.Content) (*models.Content, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Изменить контент
// @Tags Content
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID контента"
// @Param request body create.Request true "Контент"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Контент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /content/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.update"
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

	var req create.Request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err = h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	content, err := h.service.UpdateContent(r.Context(), id, req.Content())
	if err != nil {
		log.Error("failed to update content", sl.Err(err))
		response.Fail(w, r, err, "could not update content")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(content))
}
