// Package register реализует HTTP-обработчик регистрации пользователей.
//
// Первый зарегистрированный пользователь получает роль SUPER_ADMIN,
// остальные USER. Повторный e-mail дает 409.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Request данные регистрации.
type Request struct {
	FullName    string       `json:"fullName" validate:"required,max=255"`
	Email       string       `json:"email" validate:"required,email,max=255"`
	Password    string       `json:"password" validate:"required,min=6,max=72"`
	DateOfBirth *models.Date `json:"dateOfBirth,omitempty" swaggertype:"string" example:"1995-04-12"`
	Gender      string       `json:"gender,omitempty" validate:"max=32"`
	Bio         string       `json:"bio,omitempty"`
	Weight      *float64     `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Height      *float64     `json:"height,omitempty" validate:"omitempty,gt=0"`
}

// Profile переводит запрос в доменную модель.
func (r Request) Profile() models.Profile {
	return models.Profile{
		FullName:    r.FullName,
		Email:       r.Email,
		Password:    r.Password,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
		Bio:         r.Bio,
		Weight:      r.Weight,
		Height:      r.Height,
	}
}

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, p models.Profile) (*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя. Первый пользователь системы становится SUPER_ADMIN.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 200 {object} response.Response "Созданный пользователь"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "E-mail уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.register"
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
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.Register(r.Context(), req.Profile())
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		response.Fail(w, r, err, "could not register user")
		return
	}

	log.Info("user registered", sl.UserID(user.ID))
	render.JSON(w, r, response.StatusOKWithData(user))
}
