// Package notifier отправляет письма по событиям из брокера: чеки об оплате,
// напоминания об окончании подписки и оповещения поддержки о новых сообщениях.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/iq-fit/internal/lib/metrics"
	"github.com/magabrotheeeer/iq-fit/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/lib/smtp"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// ErrNoRecipient событие без адреса получателя.
var ErrNoRecipient = errors.New("notifier: no recipient")

// Transport открывает SMTP-сессию.
type Transport interface {
	Connect(ctx context.Context) (smtp.Client, error)
	GetSMTPUser() string
}

// NotifierService формирует и отправляет письма.
type NotifierService struct {
	transport      Transport
	supportAddress string
	log            *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
// supportAddress получает оповещения о сообщениях из формы обратной связи.
func NewNotifierService(transport Transport, supportAddress string, log *slog.Logger) *NotifierService {
	return &NotifierService{
		transport:      transport,
		supportAddress: supportAddress,
		log:            log,
	}
}

// HandlePaymentCompleted отправляет покупателю чек.
func (s *NotifierService) HandlePaymentCompleted(ctx context.Context, body []byte) error {
	var event models.PaymentCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	text := fmt.Sprintf("Hello, %s!\n\n"+
		"Thank you for purchasing the %s plan.\n"+
		"Amount: %.2f\n"+
		"Payment reference: %s\n"+
		"Your premium access is active until %s.\n\n"+
		"IQ-Fit team",
		event.FullName, event.PlanName, event.Amount, event.Reference, event.EndDate)

	return s.deliver(ctx, rabbitmq.QueuePayment, event.Email, "Your IQ-Fit receipt", text)
}

// HandleSubscriptionExpiring напоминает подписчику о скором окончании подписки.
func (s *NotifierService) HandleSubscriptionExpiring(ctx context.Context, body []byte) error {
	var event models.ExpiringSubscription
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	text := fmt.Sprintf("Hello, %s!\n\n"+
		"Your %s subscription ends on %s.\n"+
		"Renew it in the app to keep your premium access.\n\n"+
		"IQ-Fit team",
		event.FullName, event.PlanName, event.EndDate)

	return s.deliver(ctx, rabbitmq.QueueExpiring, event.Email, "Your IQ-Fit subscription is ending soon", text)
}

// HandleMessageReceived пересылает сообщение из формы обратной связи в поддержку.
func (s *NotifierService) HandleMessageReceived(ctx context.Context, body []byte) error {
	var event models.MessageReceivedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	text := fmt.Sprintf("New message #%d\nFrom: %s <%s>\n\n%s",
		event.MessageID, event.Name, event.Email, event.Message)

	return s.deliver(ctx, rabbitmq.QueueContact, s.supportAddress, "New contact message from "+event.Name, text)
}

func (s *NotifierService) deliver(ctx context.Context, queue, to, subject, text string) error {
	if to == "" {
		metrics.NotificationsSent.WithLabelValues(queue, "skipped").Inc()
		return fmt.Errorf("%s: %w", queue, ErrNoRecipient)
	}
	if err := s.sendEmail(ctx, []string{to}, subject, text); err != nil {
		metrics.NotificationsSent.WithLabelValues(queue, "failed").Inc()
		return err
	}
	metrics.NotificationsSent.WithLabelValues(queue, "sent").Inc()
	return nil
}

func (s *NotifierService) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := smtp.BuildMessage(from, to, subject, bodyText)

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("smtp client close", sl.Err(closeErr))
		}
	}()

	if err = client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}
	if _, err = wc.Write(msg); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to), slog.String("subject", subject))
	return nil
}
