// Package create реализует HTTP-обработчик добавления контента в каталог.
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

// Request тело запроса на создание или изменение контента.
type Request struct {
	Title           string          `json:"title" validate:"required,max=255"`
	Description     string          `json:"description"`
	ContentType     string          `json:"contentType" validate:"required,oneof=WORKOUT STUDY_TIP RECIPE"`
	Category        string          `json:"category" validate:"max=100"`
	DifficultyLevel string          `json:"difficultyLevel" validate:"max=50"`
	AccessLevel     string          `json:"accessLevel,omitempty" validate:"omitempty,oneof=FREE PREMIUM"`
	DurationMinutes *int            `json:"durationMinutes,omitempty" validate:"omitempty,gte=0"`
	VideoURL        string          `json:"videoUrl,omitempty"`
	Sets            *int            `json:"sets,omitempty" validate:"omitempty,gte=0"`
	Reps            string          `json:"reps,omitempty"`
	RestTimeSeconds *int            `json:"restTimeSeconds,omitempty" validate:"omitempty,gte=0"`
	Details         json.RawMessage `json:"details,omitempty" swaggertype:"object"`
}

// Content переводит запрос в доменную модель.
func (r Request) Content() models.Content {
	return models.Content{
		Title:           r.Title,
		Description:     r.Description,
		ContentType:     models.ContentType(r.ContentType),
		Category:        r.Category,
		DifficultyLevel: r.DifficultyLevel,
		AccessLevel:     models.AccessLevel(r.AccessLevel),
		DurationMinutes: r.DurationMinutes,
		VideoURL:        r.VideoURL,
		Sets:            r.Sets,
		Reps:            r.Reps,
		RestTimeSeconds: r.RestTimeSeconds,
		Details:         r.Details,
	}
}

// Handler создает элемент каталога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики.
type Service interface {
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Добавить контент
// @Description Если accessLevel не указан, используется FREE.
// @Tags Content
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Контент"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /content [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.create"
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

	content, err := h.service.CreateContent(r.Context(), req.Content())
	if err != nil {
		log.Error("failed to create content", sl.Err(err))
		response.Fail(w, r, err, "could not create content")
		return
	}

	log.Info("content created", slog.Int64("content_id", content.ID))
	render.JSON(w, r, response.StatusOKWithData(content))
}
