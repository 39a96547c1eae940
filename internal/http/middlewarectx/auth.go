// Package middlewarectx содержит HTTP middleware сервиса: проверку JWT,
// проверку состояния учетной записи, ограничения доступа по роли и
// владельцу ресурса, ограничение частоты запросов, CORS и метрики.
//
// Данные вызывающего пользователя кладутся в контекст запроса и читаются
// обработчиками через Caller.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/lib/jwt"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID ключ для идентификатора пользователя в контексте
	UserID Key = "user_id"
	// Email ключ для e-mail пользователя в контексте
	Email Key = "email"
	// Role ключ для роли пользователя в контексте
	Role Key = "role"
	// Premium ключ для премиум-статуса в контексте
	Premium Key = "is_premium"
)

// TokenParser проверяет JWT.
type TokenParser interface {
	ParseToken(token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет id, e-mail и роль пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := parser.ParseToken(tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Caller возвращает вызывающего пользователя из контекста.
func Caller(ctx context.Context) (models.Viewer, bool) {
	id, ok := ctx.Value(UserID).(int64)
	if !ok || id == 0 {
		return models.Viewer{}, false
	}
	role, _ := ctx.Value(Role).(models.Role)
	premium, _ := ctx.Value(Premium).(bool)
	return models.Viewer{ID: id, Role: role, IsPremium: premium}, true
}

// WithCaller кладет пользователя в контекст так же, как это делают
// JWTMiddleware и AccountStatusMiddleware.
func WithCaller(ctx context.Context, v models.Viewer) context.Context {
	ctx = context.WithValue(ctx, UserID, v.ID)
	ctx = context.WithValue(ctx, Role, v.Role)
	return context.WithValue(ctx, Premium, v.IsPremium)
}
