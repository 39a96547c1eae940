// Package catalog содержит бизнес-логику каталога контента и тарифных планов.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/iq-fit/internal/cache"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// ContentRepository описывает контракт хранилища контента.
type ContentRepository interface {
	ListContent(ctx context.Context) ([]*models.Content, error)
	SearchContent(ctx context.Context, f models.ContentFilter) ([]*models.Content, error)
	GetContent(ctx context.Context, id int64) (*models.Content, error)
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
	UpdateContent(ctx context.Context, id int64, c models.Content) (*models.Content, error)
	DeleteContent(ctx context.Context, id int64) error
}

// PlanRepository описывает контракт хранилища тарифных планов.
type PlanRepository interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error)
}

// Repository объединяет хранилища каталога.
type Repository interface {
	ContentRepository
	PlanRepository
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CatalogService реализует операции над контентом и планами.
type CatalogService struct {
	repo       Repository
	cache      Cache
	log        *slog.Logger
	contentTTL time.Duration
	plansTTL   time.Duration
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo Repository, cache Cache, log *slog.Logger, contentTTL, plansTTL time.Duration) *CatalogService {
	return &CatalogService{
		repo:       repo,
		cache:      cache,
		log:        log,
		contentTTL: contentTTL,
		plansTTL:   plansTTL,
	}
}

// ListContent возвращает весь каталог.
func (s *CatalogService) ListContent(ctx context.Context) ([]*models.Content, error) {
	return s.repo.ListContent(ctx)
}

// Search ищет контент по типу и необязательным фильтрам.
func (s *CatalogService) Search(ctx context.Context, f models.ContentFilter) ([]*models.Content, error) {
	const op = "catalog.Search"

	if !f.ContentType.Valid() {
		return nil, fmt.Errorf("%s: content type %q: %w", op, f.ContentType, models.ErrBadRequest)
	}
	if f.AccessLevel != "" && !f.AccessLevel.Valid() {
		return nil, fmt.Errorf("%s: access level %q: %w", op, f.AccessLevel, models.ErrBadRequest)
	}
	return s.repo.SearchContent(ctx, f)
}

// GetContent возвращает элемент каталога. PREMIUM-контент доступен только
// премиум-пользователям и администраторам.
func (s *CatalogService) GetContent(ctx context.Context, id int64, viewer models.Viewer) (*models.Content, error) {
	const op = "catalog.GetContent"

	content, err := s.loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanView(content) {
		return nil, fmt.Errorf("%s: premium content: %w", op, models.ErrForbidden)
	}
	return content, nil
}

func (s *CatalogService) loadContent(ctx context.Context, id int64) (*models.Content, error) {
	key := cache.ContentKey(id)

	var cached models.Content
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read content from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	content, err := s.repo.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.cache.Set(key, content, s.contentTTL); err != nil {
		s.log.Warn("failed to cache content", slog.String("key", key), sl.Err(err))
	}
	return content, nil
}

// CreateContent добавляет элемент в каталог. Уровень доступа по умолчанию FREE.
func (s *CatalogService) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	const op = "catalog.CreateContent"

	if err := normalizeContent(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreateContent(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("content created", slog.Int64("content_id", created.ID),
		slog.String("type", string(created.ContentType)))
	return created, nil
}

// UpdateContent перезаписывает элемент каталога.
func (s *CatalogService) UpdateContent(ctx context.Context, id int64, c models.Content) (*models.Content, error) {
	const op = "catalog.UpdateContent"

	if err := normalizeContent(&c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	updated, err := s.repo.UpdateContent(ctx, id, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.ContentKey(id))
	return updated, nil
}

// DeleteContent удаляет элемент каталога, ErrNotFound для неизвестного id.
func (s *CatalogService) DeleteContent(ctx context.Context, id int64) error {
	if err := s.repo.DeleteContent(ctx, id); err != nil {
		return err
	}
	s.invalidate(cache.ContentKey(id))
	return nil
}

func normalizeContent(c *models.Content) error {
	if !c.ContentType.Valid() {
		return fmt.Errorf("content type %q: %w", c.ContentType, models.ErrBadRequest)
	}
	if c.AccessLevel == "" {
		c.AccessLevel = models.AccessFree
	}
	if !c.AccessLevel.Valid() {
		return fmt.Errorf("access level %q: %w", c.AccessLevel, models.ErrBadRequest)
	}
	return nil
}

// ListPlans возвращает все планы. Список кэшируется под cache.PlansKey.
func (s *CatalogService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	var cached []*models.Plan
	found, err := s.cache.Get(cache.PlansKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	if err = s.cache.Set(cache.PlansKey, plans, s.plansTTL); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return plans, nil
}

// GetPlan возвращает план по id.
func (s *CatalogService) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	return s.repo.GetPlan(ctx, id)
}

// CreatePlan создает план и сбрасывает кэш списка планов.
func (s *CatalogService) CreatePlan(ctx context.Context, plan models.Plan) (*models.Plan, error) {
	const op = "catalog.CreatePlan"

	if plan.Price < 0 {
		return nil, fmt.Errorf("%s: negative price: %w", op, models.ErrBadRequest)
	}
	if plan.DurationDays <= 0 {
		return nil, fmt.Errorf("%s: duration must be positive: %w", op, models.ErrBadRequest)
	}
	created, err := s.repo.CreatePlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(cache.PlansKey)
	s.log.Info("plan created", slog.Int64("plan_id", created.ID), slog.String("name", created.PlanName))
	return created, nil
}

func (s *CatalogService) invalidate(key string) {
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}
