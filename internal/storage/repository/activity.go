package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// CreateActivity записывает взаимодействие пользователя с контентом.
// ErrNotFound, если пользователь или контент не существуют.
func (s *Storage) CreateActivity(ctx context.Context, userID, contentID int64, status string) (*models.ActivityLog, error) {
	const op = "storage.CreateActivity"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: user %d: %w", op, userID, models.ErrNotFound)
	}
	content, err := s.GetContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("%s: content %d: %w", op, contentID, err)
	}

	entry := &models.ActivityLog{UserID: userID, Content: content, Status: status}
	query := `INSERT INTO activity_logs (user_id, content_id, status)
			  VALUES ($1, $2, $3)
			  RETURNING id, date_accessed`
	if err = s.DB.QueryRow(ctx, query, userID, contentID, status).Scan(&entry.ID, &entry.DateAccessed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return entry, nil
}

// ListActivityByUser возвращает историю пользователя, новые записи сверху.
func (s *Storage) ListActivityByUser(ctx context.Context, userID int64) ([]*models.ActivityLog, error) {
	const op = "storage.ListActivityByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT a.id, a.user_id, a.status, a.date_accessed, ` + strings.Join(contentColumns("c"), ", ") + `
			  FROM activity_logs a
			  JOIN content c ON c.id = a.content_id
			  WHERE a.user_id = $1
			  ORDER BY a.date_accessed DESC, a.id DESC`
	rows, err := s.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.ActivityLog, 0)
	for rows.Next() {
		var (
			a       models.ActivityLog
			c       models.Content
			details []byte
		)
		if err = rows.Scan(&a.ID, &a.UserID, &a.Status, &a.DateAccessed,
			&c.ID, &c.Title, &c.Description, &c.ContentType, &c.Category,
			&c.DifficultyLevel, &c.AccessLevel, &c.DurationMinutes, &c.VideoURL, &c.Sets,
			&c.Reps, &c.RestTimeSeconds, &details, &c.UploadDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(details) > 0 {
			c.Details = details
		}
		a.Content = &c
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UserStats считает завершенные активности пользователя по типам контента
// одним запросом. ErrNotFound, если пользователь не существует.
func (s *Storage) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	const op = "storage.UserStats"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	exists, err := s.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	query := `SELECT c.content_type, COUNT(*)
			  FROM activity_logs a
			  JOIN content c ON c.id = a.content_id
			  WHERE a.user_id = $1 AND a.status = $2
			  GROUP BY c.content_type`
	rows, err := s.DB.Query(ctx, query, userID, models.ActivityCompleted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	stats := &models.UserStats{}
	for rows.Next() {
		var (
			ct    models.ContentType
			count int64
		)
		if err = rows.Scan(&ct, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		switch ct {
		case models.ContentWorkout:
			stats.Workouts = count
		case models.ContentStudyTip:
			stats.StudySessions = count
		case models.ContentRecipe:
			stats.RecipesTried = count
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
