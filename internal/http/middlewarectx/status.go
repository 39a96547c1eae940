package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// StatusService возвращает актуальное состояние учетной записи.
type StatusService interface {
	Status(ctx context.Context, userID int64) (*models.AccountStatus, error)
}

// AccountStatusMiddleware создает middleware для проверки состояния учетной записи.
// Заблокированный пользователь получает 403. Роль и премиум-статус в
// контексте заменяются актуальными значениями, так что изменения вступают в
// силу без перевыпуска токена.
func AccountStatusMiddleware(log *slog.Logger, service StatusService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AccountStatusMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			caller, ok := Caller(r.Context())
			if !ok {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			status, err := service.Status(r.Context(), caller.ID)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					log.Warn("token of a deleted user", sl.UserID(caller.ID))
					w.WriteHeader(http.StatusUnauthorized)
					render.JSON(w, r, response.Error("user no longer exists"))
					return
				}
				log.Error("failed to get account status", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if status.Suspended {
				log.Warn("suspended account, access denied", sl.UserID(caller.ID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(models.ErrSuspended.Error()))
				return
			}

			caller.Role = status.Role
			caller.IsPremium = status.IsPremium
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}
