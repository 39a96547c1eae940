package iqfit

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/iq-fit/docs"
	activityhistory "github.com/magabrotheeeer/iq-fit/internal/http/handlers/activity/history"
	activityrecord "github.com/magabrotheeeer/iq-fit/internal/http/handlers/activity/record"
	contentcreate "github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/create"
	contentlist "github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/list"
	contentread "github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/read"
	contentremove "github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/remove"
	contentsearch "github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/search"
	contentupdate "github.com/magabrotheeeer/iq-fit/internal/http/handlers/content/update"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/health"
	messagelist "github.com/magabrotheeeer/iq-fit/internal/http/handlers/messages/list"
	messageremove "github.com/magabrotheeeer/iq-fit/internal/http/handlers/messages/remove"
	messagesubmit "github.com/magabrotheeeer/iq-fit/internal/http/handlers/messages/submit"
	paymentlist "github.com/magabrotheeeer/iq-fit/internal/http/handlers/payments/list"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/payments/pay"
	plancreate "github.com/magabrotheeeer/iq-fit/internal/http/handlers/plans/create"
	planlist "github.com/magabrotheeeer/iq-fit/internal/http/handlers/plans/list"
	userlist "github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/list"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/login"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/premium"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/premiumhistory"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/purge"
	userread "github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/read"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/register"
	userremove "github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/remove"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/role"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/stats"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/subscriptions"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/suspend"
	userupdate "github.com/magabrotheeeer/iq-fit/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/iq-fit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.Metrics,
		middlewarectx.CORS(deps.AllowedOrigins),
	)

	owner := middlewarectx.OwnerOrStaff(logger, "id")
	staff := middlewarectx.RequireStaff(logger)
	superAdmin := middlewarectx.RequireRole(logger, models.RoleSuperAdmin)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, deps.RPS, deps.Burst))
			r.Post("/users", register.New(logger, deps.Accounts).ServeHTTP)
			r.Post("/users/login", login.New(logger, deps.Accounts).ServeHTTP)
		})
		r.Get("/content/search", contentsearch.New(logger, deps.Catalog).ServeHTTP)
		r.Get("/plans", planlist.New(logger, deps.Catalog).ServeHTTP)
		r.Post("/messages", messagesubmit.New(logger, deps.Inbox).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))
			r.Use(middlewarectx.AccountStatusMiddleware(logger, deps.Accounts))

			r.Put("/users/{id}/role", role.New(logger, deps.Accounts).ServeHTTP)

			r.With(owner).Get("/users/{id}", userread.New(logger, deps.Accounts).ServeHTTP)
			r.With(owner).Put("/users/{id}", userupdate.New(logger, deps.Accounts).ServeHTTP)
			r.With(owner).Delete("/users/{id}", userremove.New(logger, deps.Accounts).ServeHTTP)
			r.With(owner).Get("/users/{id}/stats", stats.New(logger, deps.Activity).ServeHTTP)
			r.With(owner).Get("/users/{id}/subscriptions", subscriptions.New(logger, deps.Billing).ServeHTTP)
			r.With(owner).Get("/activity/user/{id}", activityhistory.New(logger, deps.Activity).ServeHTTP)

			r.Get("/content", contentlist.New(logger, deps.Catalog).ServeHTTP)
			r.Get("/content/{id}", contentread.New(logger, deps.Catalog).ServeHTTP)
			r.Post("/payments/pay", pay.New(logger, deps.Billing).ServeHTTP)
			r.Post("/activity", activityrecord.New(logger, deps.Activity).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(staff)
				premiumHandler := premium.New(logger, deps.Accounts)
				r.Get("/users", userlist.New(logger, deps.Accounts).ServeHTTP)
				r.Put("/users/{id}/suspend", suspend.New(logger, deps.Accounts).ServeHTTP)
				r.Put("/users/{id}/premium", premiumHandler.ServeHTTP)
				r.Put("/users/{id}/subscription", premiumHandler.ServeHTTP)
				r.Get("/users/{id}/premium/history", premiumhistory.New(logger, deps.Accounts).ServeHTTP)

				r.Post("/content", contentcreate.New(logger, deps.Catalog).ServeHTTP)
				r.Put("/content/{id}", contentupdate.New(logger, deps.Catalog).ServeHTTP)
				r.Delete("/content/{id}", contentremove.New(logger, deps.Catalog).ServeHTTP)
				r.Post("/plans", plancreate.New(logger, deps.Catalog).ServeHTTP)
				r.Get("/payments", paymentlist.New(logger, deps.Billing).ServeHTTP)
				r.Get("/messages", messagelist.New(logger, deps.Inbox).ServeHTTP)
				r.Delete("/messages/{id}", messageremove.New(logger, deps.Inbox).ServeHTTP)
			})

			r.With(superAdmin).Delete("/users/purge", purge.New(logger, deps.Accounts).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger, deps.DB).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
