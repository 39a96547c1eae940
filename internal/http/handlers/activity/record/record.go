// Package record реализует запись активности пользователя.
package record

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iq-fit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Request запись о взаимодействии с контентом.
type Request struct {
	UserID    int64  `json:"userId" validate:"required,gt=0"`
	ContentID int64  `json:"contentId" validate:"required,gt=0"`
	Status    string `json:"status" validate:"required,max=50"`
}

// Handler сохраняет запись активности.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	Record(ctx context.Context, userID, contentID int64, status string) (*models.ActivityLog, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Записать активность
// @Tags Activity
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Активность"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Чужой пользователь"
// @Failure 404 {object} response.ErrorResponse "Пользователь или контент не найден"
// @Router /activity [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.activity.record"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	caller, ok := middlewarectx.Caller(r.Context())
	if !ok || !middlewarectx.CanActFor(caller, req.UserID) {
		log.Warn("activity for another user", sl.UserID(req.UserID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(models.ErrForbidden.Error()))
		return
	}

	entry, err := h.service.Record(r.Context(), req.UserID, req.ContentID, req.Status)
	if err != nil {
		log.Error("failed to record activity", sl.Err(err))
		response.Fail(w, r, err, "could not record activity")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(entry))
}
