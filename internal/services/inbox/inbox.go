// Package inbox принимает сообщения формы обратной связи.
package inbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Repository описывает контракт хранилища сообщений.
type Repository interface {
	CreateMessage(ctx context.Context, m models.Message) (*models.Message, error)
	ListMessages(ctx context.Context) ([]*models.Message, error)
	DeleteMessage(ctx context.Context, id int64) (int64, error)
}

// Publisher отправляет события в брокер.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// InboxService реализует операции над сообщениями.
type InboxService struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// NewInboxService создает новый экземпляр InboxService.
func NewInboxService(repo Repository, publisher Publisher, log *slog.Logger) *InboxService {
	return &InboxService{repo: repo, publisher: publisher, log: log}
}

// Submit сохраняет сообщение и уведомляет поддержку через событие
// message.received.
func (s *InboxService) Submit(ctx context.Context, m models.Message) (*models.Message, error) {
	const op = "inbox.Submit"

	saved, err := s.repo.CreateMessage(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := models.MessageReceivedEvent{
		MessageID: saved.ID,
		Name:      saved.Name,
		Email:     saved.Email,
		Message:   saved.Message,
	}
	if err = s.publisher.Publish(models.RoutingMessageReceived, event); err != nil {
		s.log.Error("failed to publish message event", slog.Int64("message_id", saved.ID), sl.Err(err))
	}
	return saved, nil
}

// List возвращает сообщения, новые сверху.
func (s *InboxService) List(ctx context.Context) ([]*models.Message, error) {
	return s.repo.ListMessages(ctx)
}

// Delete удаляет сообщение. Удаление несуществующего не ошибка.
func (s *InboxService) Delete(ctx context.Context, id int64) (int64, error) {
	return s.repo.DeleteMessage(ctx, id)
}
