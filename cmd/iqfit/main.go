// Package main IQ-Fit API
//
// @title           IQ-Fit API
// @version         1.0
// @description     API фитнес-платформы: пользователи, каталог тренировок и рецептов, планы и платежи.

// @contact.name   IQ-Fit Support
// @contact.email  support@iqfit.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/iq-fit/internal/app/iqfit"
	"github.com/magabrotheeeer/iq-fit/internal/config"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env)

	logger.Info("starting iq-fit", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := iqfit.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("iq-fit stopped gracefully")
}
