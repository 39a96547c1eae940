// Package iqfit собирает HTTP API IQ-Fit: хранилище, кэш, брокер,
// сервисы и маршруты.
package iqfit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/iq-fit/internal/cache"
	"github.com/magabrotheeeer/iq-fit/internal/config"
	"github.com/magabrotheeeer/iq-fit/internal/http/handlers/health"
	"github.com/magabrotheeeer/iq-fit/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iq-fit/internal/lib/jwt"
	"github.com/magabrotheeeer/iq-fit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/migrations"
	"github.com/magabrotheeeer/iq-fit/internal/services/account"
	"github.com/magabrotheeeer/iq-fit/internal/services/activity"
	"github.com/magabrotheeeer/iq-fit/internal/services/billing"
	"github.com/magabrotheeeer/iq-fit/internal/services/catalog"
	"github.com/magabrotheeeer/iq-fit/internal/services/inbox"
	"github.com/magabrotheeeer/iq-fit/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// Deps зависимости маршрутов.
type Deps struct {
	Accounts *account.AccountService
	Catalog  *catalog.CatalogService
	Billing  *billing.BillingService
	Activity *activity.ActivityService
	Inbox    *inbox.InboxService
	Tokens   middlewarectx.TokenParser
	DB       health.Pinger

	AllowedOrigins []string
	RPS            float64
	Burst          int
}

// sharedCache общий контракт redis- и in-memory кэша.
type sharedCache interface {
	account.Cache
	catalog.Cache
}

// App HTTP-приложение IQ-Fit.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	closers []func() error
}

// New создает приложение: подключается к PostgreSQL, применяет миграции,
// поднимает кэш и издателя событий. Redis и RabbitMQ необязательны: без
// адреса используется кэш в памяти процесса, а события не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.iqfit.New"

	if err := migrations.Run(cfg.StorageConnectionString, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pool, err := repository.Connect(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db := repository.New(pool)
	app := &App{logger: logger, db: db}

	var store sharedCache
	if cfg.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, redisCache.Close)
		store = redisCache
	} else {
		logger.Warn("redis address is empty, using in-process cache")
		store = cache.NewMemory()
	}

	var publisher billing.Publisher = rabbitmq.Discard{}
	if cfg.RabbitMQURL != "" {
		conn, ch, err := connectBroker(cfg)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.closers = append(app.closers, ch.Close, conn.Close)
		publisher = rabbitmq.NewPublisher(ch)
	} else {
		logger.Warn("rabbitmq url is empty, notifications are disabled")
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	deps := Deps{
		Accounts:       account.NewAccountService(db, store, tokens, logger, cfg.StatusTTL),
		Catalog:        catalog.NewCatalogService(db, store, logger, cfg.ContentTTL, cfg.PlansTTL),
		Billing:        billing.NewBillingService(db, store, publisher, logger),
		Activity:       activity.NewActivityService(db, logger),
		Inbox:          inbox.NewInboxService(db, publisher, logger),
		Tokens:         tokens,
		DB:             db,
		AllowedOrigins: cfg.AllowedOrigins,
		RPS:            cfg.RPS,
		Burst:          cfg.Burst,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func connectBroker(cfg *config.Config) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// Run обслуживает HTTP до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("failed to close resource", sl.Err(err))
		}
	}
	a.db.Close()
}
