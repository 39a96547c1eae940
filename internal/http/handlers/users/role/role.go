// Package role реализует HTTP-обработчик смены роли пользователя.
//
// actorId в строке запроса должен совпадать с вызывающим пользователем;
// права actor проверяет сервис.
package role

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iq-fit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Request новая роль.
type Request struct {
	Role string `json:"role" validate:"required"`
}

// Handler меняет роль пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	SetRole(ctx context.Context, actorID, targetID int64, role string) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Изменить роль
// @Description Менять роли может только SUPER_ADMIN. Роль SUPER_ADMIN изменить нельзя.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param actorId query int true "ID вызывающего пользователя"
// @Param request body Request true "Новая роль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Неизвестная роль"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{id}/role [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.role"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetID, err := params.ID(r, "id")
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}
	actorID, err := params.QueryID(r, "actorId")
	if err != nil {
		log.Warn("failed to decode actorId", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("actorId query parameter is required"))
		return
	}

	caller, ok := middlewarectx.Caller(r.Context())
	if !ok || caller.ID != actorID {
		log.Warn("actorId does not match caller", slog.Int64("actor_id", actorID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("actorId must be the authenticated user"))
		return
	}

	var req Request
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

	user, err := h.service.SetRole(r.Context(), actorID, targetID, req.Role)
	if err != nil {
		log.Warn("failed to change role", sl.Err(err))
		response.Fail(w, r, err, "could not change role")
		return
	}
	render.JSON(w, r, response.StatusOKWithData(user))
}
