// Package premium реализует административную установку премиум-статуса.
//
// Значение принимается либо в теле {"isPremium": bool}, либо в строке
// запроса ?isPremium=true|false. Строка запроса имеет приоритет.
package premium

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/params"
	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Request тело запроса.
type Request struct {
	IsPremium *bool `json:"isPremium"`
}

var errNoValue = errors.New("isPremium is required")

// Handler меняет премиум-статус пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	SetPremium(ctx context.Context, id int64, value bool) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Установить премиум-статус
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param isPremium query bool false "Новое значение"
// @Param request body Request false "Новое значение"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{id}/premium [put]
// @Router /users/{id}/subscription [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.premium"
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

	value, err := premiumValue(r)
	if err != nil {
		log.Warn("failed to read isPremium", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	user, err := h.service.SetPremium(r.Context(), id, value)
	if err != nil {
		log.Error("failed to set premium", sl.Err(err))
		response.Fail(w, r, err, "could not update premium status")
		return
	}

	log.Info("premium status changed", sl.UserID(id), slog.Bool("is_premium", value))
	render.JSON(w, r, response.StatusOKWithData(user))
}

func premiumValue(r *http.Request) (bool, error) {
	if raw := r.URL.Query().Get("isPremium"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, errors.New("isPremium must be true or false")
		}
		return v, nil
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return false, errNoValue
	}
	if req.IsPremium == nil {
		return false, errNoValue
	}
	return *req.IsPremium, nil
}
