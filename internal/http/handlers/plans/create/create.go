// Package create реализует HTTP-обработчик создания тарифного плана.
package create

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

// Request описание нового плана.
type Request struct {
	PlanName     string  `json:"planName" validate:"required,max=100"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" validate:"gte=0"`
	DurationDays int     `json:"durationDays" validate:"required,gt=0"`
}

// Handler создает план.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Создать план
// @Tags Plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "План"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.create"
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

	plan, err := h.service.CreatePlan(r.Context(), models.Plan{
		PlanName:     req.PlanName,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		log.Error("failed to create plan", sl.Err(err))
		response.Fail(w, r, err, "could not create plan")
		return
	}

	log.Info("plan created", slog.Int64("plan_id", plan.ID))
	render.JSON(w, r, response.StatusOKWithData(plan))
}
