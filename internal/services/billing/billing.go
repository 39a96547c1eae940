// Package billing оформляет покупку тарифных планов и отдает историю
// платежей и подписок.
package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/iq-fit/internal/cache"
	"github.com/magabrotheeeer/iq-fit/internal/lib/metrics"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Repository описывает контракт хранилища платежей.
type Repository interface {
	PurchasePlan(ctx context.Context, p models.Purchase) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]*models.Payment, error)
	ListUserSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error)
	UserExists(ctx context.Context, id int64) (bool, error)
}

// Cache нужен только для сброса закэшированного статуса покупателя.
type Cache interface {
	Invalidate(key string) error
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// BillingService реализует покупку плана.
type BillingService struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
}

// NewBillingService создает новый экземпляр BillingService.
func NewBillingService(repo Repository, cache Cache, publisher Publisher, log *slog.Logger) *BillingService {
	return &BillingService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

// Purchase покупает план. Подписка, премиум-статус и платеж создаются в
// одной транзакции хранилища. После фиксации сбрасывается кэш статуса и
// публикуется событие payment.completed; ошибка публикации только логируется.
func (s *BillingService) Purchase(ctx context.Context, p models.Purchase) (*models.Payment, error) {
	const op = "billing.Purchase"

	payment, err := s.repo.PurchasePlan(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log := s.log.With(slog.String("op", op), sl.UserID(p.UserID), slog.Int64("payment_id", payment.ID))

	key := cache.StatusKey(p.UserID)
	if err = s.cache.Invalidate(key); err != nil {
		log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}

	event := paymentEvent(payment)
	if err = s.publisher.Publish(models.RoutingPaymentCompleted, event); err != nil {
		log.Error("failed to publish payment event", sl.Err(err))
	}

	metrics.Purchases.WithLabelValues(event.PlanName).Inc()
	log.Info("plan purchased", slog.String("plan", event.PlanName), slog.Float64("amount", payment.Amount))
	return payment, nil
}

func paymentEvent(p *models.Payment) models.PaymentCompletedEvent {
	event := models.PaymentCompletedEvent{
		PaymentID: p.ID,
		Reference: p.Reference,
		Amount:    p.Amount,
		PaidAt:    p.PaymentDate,
	}
	if p.User != nil {
		event.UserID = p.User.ID
		event.Email = p.User.Email
		event.FullName = p.User.FullName
	}
	if p.Subscription != nil {
		event.EndDate = p.Subscription.EndDate
		if p.Subscription.Plan != nil {
			event.PlanName = p.Subscription.Plan.PlanName
		}
	}
	return event
}

// ListPayments возвращает все платежи.
func (s *BillingService) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	return s.repo.ListPayments(ctx)
}

// ListUserSubscriptions возвращает подписки пользователя, ErrNotFound если
// пользователя нет.
func (s *BillingService) ListUserSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	const op = "billing.ListUserSubscriptions"

	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: user %d: %w", op, userID, models.ErrNotFound)
	}
	return s.repo.ListUserSubscriptions(ctx, userID)
}
