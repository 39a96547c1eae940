// Package notifier собирает воркер уведомлений: потребители очередей
// RabbitMQ, отправляющие письма через SMTP.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/iq-fit/internal/config"
	"github.com/magabrotheeeer/iq-fit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/lib/smtp"
	notifierservice "github.com/magabrotheeeer/iq-fit/internal/services/notifier"
)

// App воркер уведомлений.
type App struct {
	conn            *amqp.Connection
	ch              *amqp.Channel
	notifierService *notifierservice.NotifierService
	logger          *slog.Logger
}

// New подключается к брокеру и готовит SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		conn:            conn,
		ch:              ch,
		notifierService: notifierservice.NewNotifierService(transport, cfg.SupportAddress, logger),
		logger:          logger,
	}, nil
}

// Run запускает потребителей всех очередей уведомлений и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	consumers := map[string]func(context.Context, []byte) error{
		rabbitmq.QueuePayment:  a.notifierService.HandlePaymentCompleted,
		rabbitmq.QueueExpiring: a.notifierService.HandleSubscriptionExpiring,
		rabbitmq.QueueContact:  a.notifierService.HandleMessageReceived,
	}

	g, gctx := errgroup.WithContext(ctx)
	for queue, handle := range consumers {
		g.Go(func() error {
			err := rabbitmq.ConsumerMessage(gctx, a.logger, a.ch, queue, func(body []byte) error {
				return handle(gctx, body)
			})
			if err != nil {
				a.logger.Error("failed to start consumer", slog.String("queue", queue), sl.Err(err))
				return err
			}
			a.logger.Info("consumer started", slog.String("queue", queue))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.close()
		return err
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
