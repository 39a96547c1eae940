package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

var contentFields = []string{
	"id", "title", "description", "content_type", "category", "difficulty_level",
	"access_level", "duration_minutes", "video_url", "sets", "reps",
	"rest_time_seconds", "details", "upload_date",
}

func contentColumns(alias string) []string {
	if alias == "" {
		return contentFields
	}
	cols := make([]string, len(contentFields))
	for i, f := range contentFields {
		cols[i] = alias + "." + f
	}
	return cols
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func scanContent(row pgx.Row) (*models.Content, error) {
	var (
		c       models.Content
		details []byte
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ContentType, &c.Category,
		&c.DifficultyLevel, &c.AccessLevel, &c.DurationMinutes, &c.VideoURL, &c.Sets,
		&c.Reps, &c.RestTimeSeconds, &details, &c.UploadDate); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		c.Details = json.RawMessage(details)
	}
	return &c, nil
}

func detailsArg(d json.RawMessage) any {
	if len(d) == 0 {
		return nil
	}
	return []byte(d)
}

func contentValues(c models.Content) map[string]any {
	return map[string]any{
		"title":             c.Title,
		"description":       c.Description,
		"content_type":      c.ContentType,
		"category":          c.Category,
		"difficulty_level":  c.DifficultyLevel,
		"access_level":      c.AccessLevel,
		"duration_minutes":  c.DurationMinutes,
		"video_url":         c.VideoURL,
		"sets":              c.Sets,
		"reps":              c.Reps,
		"rest_time_seconds": c.RestTimeSeconds,
		"details":           detailsArg(c.Details),
	}
}

func (s *Storage) queryContent(ctx context.Context, query string, args ...any) ([]*models.Content, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// ListContent возвращает весь каталог.
func (s *Storage) ListContent(ctx context.Context) ([]*models.Content, error) {
	const op = "storage.ListContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.queryContent(ctx,
		`SELECT `+strings.Join(contentColumns(""), ", ")+` FROM content ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SearchContent ищет контент по непустым полям фильтра.
func (s *Storage) SearchContent(ctx context.Context, f models.ContentFilter) ([]*models.Content, error) {
	const op = "storage.SearchContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	q := psql.Select(contentColumns("")...).From("content").OrderBy("id")
	if f.ContentType != "" {
		q = q.Where(squirrel.Eq{"content_type": string(f.ContentType)})
	}
	if f.AccessLevel != "" {
		q = q.Where(squirrel.Eq{"access_level": string(f.AccessLevel)})
	}
	if f.Category != "" {
		q = q.Where(squirrel.Eq{"category": f.Category})
	}
	if f.DifficultyLevel != "" {
		q = q.Where(squirrel.Eq{"difficulty_level": f.DifficultyLevel})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.queryContent(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetContent возвращает элемент каталога по id.
func (s *Storage) GetContent(ctx context.Context, id int64) (*models.Content, error) {
	const op = "storage.GetContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + strings.Join(contentColumns(""), ", ") + ` FROM content WHERE id = $1`
	c, err := scanContent(s.DB.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return c, nil
}

// CreateContent сохраняет новый элемент каталога.
func (s *Storage) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	const op = "storage.CreateContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query, args, err := psql.Insert("content").
		SetMap(contentValues(c)).
		Suffix("RETURNING " + strings.Join(contentFields, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := scanContent(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return created, nil
}

// UpdateContent перезаписывает элемент каталога. Дата загрузки не меняется.
func (s *Storage) UpdateContent(ctx context.Context, id int64, c models.Content) (*models.Content, error) {
	const op = "storage.UpdateContent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query, args, err := psql.Update("content").
		SetMap(contentValues(c)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(contentFields, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := scanContent(s.DB.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return updated, nil
}

// DeleteContent удаляет элемент каталога. ErrNotFound, если id неизвестен.
func (s *Storage) DeleteContent(ctx context.Context, id int64) error {
	const op = "storage.DeleteContent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tag, err := s.DB.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
