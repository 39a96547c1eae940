// Package scheduler периодически ищет подписки, срок которых скоро
// истекает, и публикует напоминания.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// SubscriptionRepository ищет подписки по дате окончания и хранит
// отметки об отправленных напоминаниях.
type SubscriptionRepository interface {
	FindSubscriptionsEndingOn(ctx context.Context, day models.Date) ([]models.ExpiringSubscription, error)
	ClaimReminder(ctx context.Context, subscriptionID int64, endDate models.Date) (bool, error)
	ReleaseReminder(ctx context.Context, subscriptionID int64, endDate models.Date) error
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// SchedulerService публикует события subscription.expiring.
type SchedulerService struct {
	repo       SubscriptionRepository
	publisher  Publisher
	log        *slog.Logger
	interval   time.Duration
	daysBefore int
	today      func() models.Date
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, log *slog.Logger, interval time.Duration, daysBefore int) *SchedulerService {
	return &SchedulerService{
		repo:       repo,
		publisher:  publisher,
		log:        log,
		interval:   interval,
		daysBefore: daysBefore,
		today:      models.Today,
	}
}

// Run выполняет проверку сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce публикует напоминания для подписок, заканчивающихся через
// daysBefore дней, и возвращает число опубликованных событий. По каждой
// подписке напоминание о дате окончания публикуется не больше одного раза.
func (s *SchedulerService) RunOnce(ctx context.Context) int {
	day := s.today().AddDays(s.daysBefore)
	log := s.log.With(slog.String("op", "scheduler.RunOnce"), slog.String("end_date", day.String()))

	log.Info("looking for expiring subscriptions")
	subs, err := s.repo.FindSubscriptionsEndingOn(ctx, day)
	if err != nil {
		log.Error("failed to find subscriptions", sl.Err(err))
		return 0
	}
	if len(subs) == 0 {
		log.Info("no expiring subscriptions found")
		return 0
	}

	published := 0
	for _, sub := range subs {
		subLog := log.With(slog.Int64("subscription_id", sub.SubscriptionID))
		claimed, err := s.repo.ClaimReminder(ctx, sub.SubscriptionID, sub.EndDate)
		if err != nil {
			subLog.Error("failed to claim reminder", sl.Err(err))
			continue
		}
		if !claimed {
			subLog.Debug("reminder already sent")
			continue
		}
		if err = s.publisher.Publish(models.RoutingSubscriptionExpiring, sub); err != nil {
			subLog.Error("failed to publish message", sl.Err(err))
			if err = s.repo.ReleaseReminder(ctx, sub.SubscriptionID, sub.EndDate); err != nil {
				subLog.Error("failed to release reminder", sl.Err(err))
			}
			continue
		}
		published++
	}
	log.Info("expiring subscriptions published", slog.Int("found", len(subs)), slog.Int("published", published))
	return published
}
