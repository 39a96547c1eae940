// Package activity ведет журнал взаимодействия пользователей с контентом
// и считает по нему статистику.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// Repository описывает контракт хранилища журнала активности.
type Repository interface {
	CreateActivity(ctx context.Context, userID, contentID int64, status string) (*models.ActivityLog, error)
	ListActivityByUser(ctx context.Context, userID int64) ([]*models.ActivityLog, error)
	UserStats(ctx context.Context, userID int64) (*models.UserStats, error)
}

// ActivityService реализует операции журнала активности.
type ActivityService struct {
	repo Repository
	log  *slog.Logger
}

// NewActivityService создает новый экземпляр ActivityService.
func NewActivityService(repo Repository, log *slog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

// Record записывает активность. Статус приводится к верхнему регистру.
func (s *ActivityService) Record(ctx context.Context, userID, contentID int64, status string) (*models.ActivityLog, error) {
	const op = "activity.Record"

	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" {
		return nil, fmt.Errorf("%s: empty status: %w", op, models.ErrBadRequest)
	}
	entry, err := s.repo.CreateActivity(ctx, userID, contentID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("activity recorded", sl.UserID(userID), slog.Int64("content_id", contentID),
		slog.String("status", status))
	return entry, nil
}

// History возвращает журнал пользователя, новые записи сверху.
func (s *ActivityService) History(ctx context.Context, userID int64) ([]*models.ActivityLog, error) {
	return s.repo.ListActivityByUser(ctx, userID)
}

// Stats возвращает количество завершенных активностей по типам контента.
func (s *ActivityService) Stats(ctx context.Context, userID int64) (*models.UserStats, error) {
	return s.repo.UserStats(ctx, userID)
}
