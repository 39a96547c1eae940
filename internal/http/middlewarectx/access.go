package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iq-fit/internal/http/response"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// RequireRole пропускает только пользователей с одной из ролей roles.
func RequireRole(log *slog.Logger, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := Caller(r.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			if !slices.Contains(roles, caller.Role) {
				log.Warn("role not allowed", slog.Int64("user_id", caller.ID),
					slog.String("role", string(caller.Role)), slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff пропускает ADMIN и SUPER_ADMIN.
func RequireStaff(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(log, models.RoleAdmin, models.RoleSuperAdmin)
}

// OwnerOrStaff пропускает владельца ресурса, чей id указан в URL-параметре
// param, и администраторов.
func OwnerOrStaff(log *slog.Logger, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := Caller(r.Context())
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error("failed to decode id from url"))
				return
			}
			if !CanActFor(caller, id) {
				log.Warn("access to foreign resource denied", slog.Int64("user_id", caller.ID), slog.Int64("owner_id", id))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CanActFor сообщает, может ли caller действовать от имени пользователя ownerID.
func CanActFor(caller models.Viewer, ownerID int64) bool {
	return caller.ID == ownerID || caller.Role.IsStaff()
}
