package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// CreateMessage сохраняет сообщение из формы обратной связи.
func (s *Storage) CreateMessage(ctx context.Context, m models.Message) (*models.Message, error) {
	const op = "storage.CreateMessage"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO messages (name, email, message)
			  VALUES ($1, $2, $3)
			  RETURNING id, date_sent`
	if err := s.DB.QueryRow(ctx, query, m.Name, m.Email, m.Message).Scan(&m.ID, &m.DateSent); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// ListMessages возвращает сообщения, новые сверху.
func (s *Storage) ListMessages(ctx context.Context) ([]*models.Message, error) {
	const op = "storage.ListMessages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.Query(ctx,
		`SELECT id, name, email, message, date_sent FROM messages ORDER BY date_sent DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err = rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.DateSent); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteMessage удаляет сообщение и возвращает количество удаленных строк.
func (s *Storage) DeleteMessage(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteMessage"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tag, err := s.DB.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}
