// Package update реализует HTTP-обработчик изменения профиля.
//
// Все поля профиля перезаписываются значениями из запроса; пустой пароль
// оставляет текущий.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Request новые значения профиля.
type Request struct {
	FullName    string       `json:"fullName" validate:"required,max=255"`
	Email       string       `json:"email" validate:"required,email,max=255"`
	Password    string       `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	DateOfBirth *models.Date `json:"dateOfBirth,omitempty" swaggertype:"string" example:"1995-04-12"`
	Gender      string       `json:"gender,omitempty" validate:"max=32"`
	Bio         string       `json:"bio,omitempty"`
	Weight      *float64     `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Height      *float64     `json:"height,omitempty" validate:"omitempty,gt=0"`
}

// Handler обновляет профиль пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	UpdateProfile(ctx context.Context, id int64, p models.Profile) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Обновить профиль
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body Request true "Профиль"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 409 {object} response.ErrorResponse "E-mail занят другим пользователем"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update"
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

	var req Request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err = h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), id, models.Profile{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Bio:         req.Bio,
		Weight:      req.Weight,
		Height:      req.Height,
	})
	if err != nil {
		log.Error("failed to update user", sl.Err(err))
		response.Fail(w, r, err, "could not update user")
		return
	}

	log.Info("profile updated", sl.UserID(id))
	render.JSON(w, r, response.StatusOKWithData(user))
}
