// Package account содержит бизнес-логику учетных записей: регистрацию,
// вход, профиль, роли, блокировку и административное управление
// премиум-статусом.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/iq-fit/internal/cache"
	"github.com/magabrotheeeer/iq-fit/internal/lib/metrics"
	"github.com/magabrotheeeer/iq-fit/internal/lib/password"
	"github.com/magabrotheeeer/iq-fit/internal/lib/sl"
	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, p models.Profile, passwordHash string) (*models.User, error)
	ToggleSuspend(ctx context.Context, id int64) (*models.User, error)
	SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error)
	SetPremium(ctx context.Context, id int64, value bool) (*models.User, error)
	PremiumHistory(ctx context.Context, userID int64) ([]models.PremiumChange, error)
	GetAccountStatus(ctx context.Context, id int64) (*models.AccountStatus, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)
	PurgeUsers(ctx context.Context) (int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// TokenMaker выпускает JWT для вошедшего пользователя.
type TokenMaker interface {
	GenerateToken(user *models.User) (string, error)
}

// AccountService реализует операции над учетными записями.
type AccountService struct {
	repo      UserRepository
	cache     Cache
	tokens    TokenMaker
	log       *slog.Logger
	statusTTL time.Duration
}

// NewAccountService создает новый экземпляр AccountService.
func NewAccountService(repo UserRepository, cache Cache, tokens TokenMaker, log *slog.Logger, statusTTL time.Duration) *AccountService {
	return &AccountService{
		repo:      repo,
		cache:     cache,
		tokens:    tokens,
		log:       log,
		statusTTL: statusTTL,
	}
}

// Register создает пользователя. Первый пользователь системы получает роль
// SUPER_ADMIN, остальные USER.
func (s *AccountService) Register(ctx context.Context, p models.Profile) (*models.User, error) {
	const op = "account.Register"

	_, err := s.repo.GetUserByEmail(ctx, p.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: email %q: %w", op, p.Email, models.ErrConflict)
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := password.GetHash(p.Password)
	if err != nil {
		if errors.Is(err, password.ErrEmpty) {
			return nil, fmt.Errorf("%s: %w: empty password", op, models.ErrBadRequest)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.repo.RegisterUser(ctx, models.User{
		FullName:     p.FullName,
		Email:        p.Email,
		PasswordHash: hash,
		DateOfBirth:  p.DateOfBirth,
		Gender:       p.Gender,
		Bio:          p.Bio,
		Weight:       p.Weight,
		Height:       p.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Registrations.Inc()
	s.log.Info("user registered", sl.UserID(user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

// Authenticate проверяет email и пароль и выпускает токен. Неизвестный email
// и неверный пароль дают одну и ту же ошибку ErrUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, email, rawPassword string) (*models.User, string, error) {
	const op = "account.Authenticate"

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", models.ErrUnauthorized
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", models.ErrUnauthorized
	}
	if user.Suspended {
		return nil, "", models.ErrSuspended
	}

	token, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// Get возвращает пользователя по id.
func (s *AccountService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

// List возвращает всех пользователей.
func (s *AccountService) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// ToggleSuspend инвертирует блокировку пользователя.
func (s *AccountService) ToggleSuspend(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.ToggleSuspend(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateStatus(id)
	s.log.Info("user suspension toggled", sl.UserID(id), slog.Bool("suspended", user.Suspended))
	return user, nil
}

// UpdateProfile перезаписывает поля профиля. Пустой пароль не меняет
// текущий.
func (s *AccountService) UpdateProfile(ctx context.Context, id int64, p models.Profile) (*models.User, error) {
	const op = "account.UpdateProfile"

	var hash string
	if p.Password != "" {
		var err error
		if hash, err = password.GetHash(p.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return s.repo.UpdateUser(ctx, id, p, hash)
}

// SetRole меняет роль target. Менять роли может только SUPER_ADMIN,
// роль SUPER_ADMIN изменить нельзя.
func (s *AccountService) SetRole(ctx context.Context, actorID, targetID int64, role string) (*models.User, error) {
	const op = "account.SetRole"

	actor, err := s.repo.GetUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("%s: actor: %w", op, err)
	}
	if actor.Role != models.RoleSuperAdmin {
		return nil, fmt.Errorf("%s: only SUPER_ADMIN can change roles: %w", op, models.ErrForbidden)
	}

	target, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("%s: target: %w", op, err)
	}
	if target.Role == models.RoleSuperAdmin {
		return nil, fmt.Errorf("%s: SUPER_ADMIN role cannot be changed: %w", op, models.ErrForbidden)
	}

	newRole, err := models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("%s: role %q: %w", op, role, err)
	}

	updated, err := s.repo.SetRole(ctx, targetID, newRole)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidateStatus(targetID)
	s.log.Info("role changed", sl.UserID(targetID), slog.Int64("actor_id", actorID),
		slog.String("role", string(newRole)))
	return updated, nil
}

// SetPremium административно устанавливает премиум-статус.
func (s *AccountService) SetPremium(ctx context.Context, id int64, value bool) (*models.User, error) {
	user, err := s.repo.SetPremium(ctx, id, value)
	if err != nil {
		return nil, err
	}
	s.invalidateStatus(id)
	s.log.Info("premium overridden", sl.UserID(id), slog.Bool("is_premium", value))
	return user, nil
}

// PremiumHistory возвращает журнал изменений премиум-статуса пользователя.
func (s *AccountService) PremiumHistory(ctx context.Context, id int64) ([]models.PremiumChange, error) {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.PremiumHistory(ctx, id)
}

// Delete удаляет пользователя. Удаление несуществующего не ошибка.
func (s *AccountService) Delete(ctx context.Context, id int64) (int64, error) {
	count, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return 0, err
	}
	s.invalidateStatus(id)
	return count, nil
}

// Purge удаляет всех пользователей вместе с зависимыми данными.
func (s *AccountService) Purge(ctx context.Context) (int64, error) {
	const op = "account.Purge"

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := s.repo.PurgeUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	for _, u := range users {
		s.invalidateStatus(u.ID)
	}
	s.log.Warn("all users purged", slog.Int64("count", count))
	return count, nil
}

// Status возвращает роль, премиум-статус и блокировку. Результат кэшируется.
func (s *AccountService) Status(ctx context.Context, id int64) (*models.AccountStatus, error) {
	key := cache.StatusKey(id)

	var cached models.AccountStatus
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read status from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	status, err := s.repo.GetAccountStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = s.cache.Set(key, status, s.statusTTL); err != nil {
		s.log.Warn("failed to cache status", slog.String("key", key), sl.Err(err))
	}
	return status, nil
}

func (s *AccountService) invalidateStatus(id int64) {
	key := cache.StatusKey(id)
	if err := s.cache.Invalidate(key); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
	}
}
