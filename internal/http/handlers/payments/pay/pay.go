// Package pay реализует покупку тарифного плана.
//
// Пользователь может оплатить только собственную подписку; администраторы
// оформляют покупку за любого пользователя.
package pay

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

// Request тело запроса на покупку. Нулевой amount означает цену плана.
type Request struct {
	UserID        int64   `json:"userId" validate:"required,gt=0"`
	PlanID        int64   `json:"planId" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,max=50"`
}

// Handler оформляет покупку плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	Purchase(ctx context.Context, p models.Purchase) (*models.Payment, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Купить план
// @Description Создает подписку и платеж, включает премиум-статус пользователя.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Покупка"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Сумма не совпадает с ценой плана"
// @Failure 403 {object} response.ErrorResponse "Покупка за другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Пользователь или план не найден"
// @Router /payments/pay [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.pay"
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

	caller, ok := middlewarectx.Caller(r.Context())
	if !ok || !middlewarectx.CanActFor(caller, req.UserID) {
		log.Warn("purchase on behalf of another user", sl.UserID(req.UserID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error(models.ErrForbidden.Error()))
		return
	}

	payment, err := h.service.Purchase(r.Context(), models.Purchase{
		UserID:        req.UserID,
		PlanID:        req.PlanID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		log.Error("purchase failed", sl.Err(err))
		response.Fail(w, r, err, "could not complete purchase")
		return
	}

	log.Info("plan purchased", sl.UserID(req.UserID), slog.Int64("plan_id", req.PlanID))
	render.JSON(w, r, response.StatusOKWithData(payment))
}
