package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

// registrationLockKey ключ advisory-блокировки, под которой выбирается роль
// нового пользователя.
const registrationLockKey int64 = 7_341_001

var userFields = []string{
	"id", "full_name", "email", "password_hash", "role", "is_premium", "suspended",
	"date_of_birth", "gender", "bio", "weight", "height", "join_date",
}

func userColumns(alias string) string {
	if alias == "" {
		return strings.Join(userFields, ", ")
	}
	cols := make([]string, len(userFields))
	for i, f := range userFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u   models.User
		dob *time.Time
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role,
		&u.IsPremium, &u.Suspended, &dob, &u.Gender, &u.Bio, &u.Weight, &u.Height,
		&u.JoinDate); err != nil {
		return nil, err
	}
	if dob != nil {
		d := models.NewDate(*dob)
		u.DateOfBirth = &d
	}
	return &u, nil
}

func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

// RegisterUser сохраняет нового пользователя. Роль выбирается внутри
// транзакции: первый пользователь системы становится суперадминистратором.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockKey); err != nil {
			return err
		}
		var count int64
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
			return err
		}
		user.Role = models.InitialRole(count)

		query := `INSERT INTO users (full_name, email, password_hash, role, is_premium, suspended,
				      date_of_birth, gender, bio, weight, height)
				  VALUES ($1, $2, $3, $4, FALSE, FALSE, $5, $6, $7, $8, $9)
				  RETURNING id, join_date`
		return mapErr(tx.QueryRow(ctx, query,
			user.FullName, user.Email, user.PasswordHash, user.Role,
			dateArg(user.DateOfBirth), user.Gender, user.Bio, user.Weight, user.Height,
		).Scan(&user.ID, &user.JoinDate))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.IsPremium = false
	user.Suspended = false
	return &user, nil
}

// GetUser возвращает пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns("")+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u, err := scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns("")+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return u, nil
}

// ListUsers возвращает всех пользователей по возрастанию id.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.Query(ctx, `SELECT `+userColumns("")+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser перезаписывает поля профиля. Пустой passwordHash сохраняет
// текущий пароль.
func (s *Storage) UpdateUser(ctx context.Context, id int64, p models.Profile, passwordHash string) (*models.User, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET full_name = $1, email = $2, gender = $3, date_of_birth = $4, bio = $5,
			      weight = $6, height = $7,
			      password_hash = COALESCE(NULLIF($8, ''), password_hash)
			  WHERE id = $9
			  RETURNING ` + userColumns("")
	u, err := scanUser(s.DB.QueryRow(ctx, query,
		p.FullName, p.Email, p.Gender, dateArg(p.DateOfBirth), p.Bio, p.Weight, p.Height,
		passwordHash, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return u, nil
}

// ToggleSuspend инвертирует флаг блокировки пользователя.
func (s *Storage) ToggleSuspend(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.ToggleSuspend"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET suspended = NOT suspended WHERE id = $1 RETURNING ` + userColumns("")
	u, err := scanUser(s.DB.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return u, nil
}

// SetRole меняет роль пользователя.
func (s *Storage) SetRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	const op = "storage.SetRole"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET role = $1 WHERE id = $2 RETURNING ` + userColumns("")
	u, err := scanUser(s.DB.QueryRow(ctx, query, role, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return u, nil
}

// setPremium единственная точка изменения премиум-статуса. Каждое изменение
// записывается в premium_changes.
func setPremium(ctx context.Context, q querier, userID int64, value bool,
	cause models.PremiumCause, subscriptionID *int64) error {
	tag, err := q.Exec(ctx, `UPDATE users SET is_premium = $1 WHERE id = $2`, value, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	_, err = q.Exec(ctx,
		`INSERT INTO premium_changes (user_id, is_premium, cause, subscription_id) VALUES ($1, $2, $3, $4)`,
		userID, value, cause, subscriptionID)
	return mapErr(err)
}

// SetPremium административно устанавливает премиум-статус.
func (s *Storage) SetPremium(ctx context.Context, id int64, value bool) (*models.User, error) {
	const op = "storage.SetPremium"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var u *models.User
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := setPremium(ctx, tx, id, value, models.PremiumCauseAdminOverride, nil); err != nil {
			return err
		}
		var err error
		u, err = scanUser(tx.QueryRow(ctx, `SELECT `+userColumns("")+` FROM users WHERE id = $1`, id))
		return mapErr(err)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// PremiumHistory возвращает журнал изменений премиум-статуса, новые сверху.
func (s *Storage) PremiumHistory(ctx context.Context, userID int64) ([]models.PremiumChange, error) {
	const op = "storage.PremiumHistory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, is_premium, cause, subscription_id, changed_at
			  FROM premium_changes
			  WHERE user_id = $1
			  ORDER BY changed_at DESC, id DESC`
	rows, err := s.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.PremiumChange, 0)
	for rows.Next() {
		var c models.PremiumChange
		if err = rows.Scan(&c.ID, &c.UserID, &c.IsPremium, &c.Cause, &c.SubscriptionID, &c.ChangedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetAccountStatus возвращает роль, премиум-статус и блокировку пользователя.
func (s *Storage) GetAccountStatus(ctx context.Context, id int64) (*models.AccountStatus, error) {
	const op = "storage.GetAccountStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var st models.AccountStatus
	err := s.DB.QueryRow(ctx, `SELECT role, is_premium, suspended FROM users WHERE id = $1`, id).
		Scan(&st.Role, &st.IsPremium, &st.Suspended)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return &st, nil
}

// DeleteUser удаляет пользователя вместе с зависимыми записями и
// возвращает количество удаленных строк.
func (s *Storage) DeleteUser(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tag, err := s.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

// PurgeUsers удаляет всех пользователей и их платежи, подписки, журнал
// премиум-статуса и активность одной транзакцией.
func (s *Storage) PurgeUsers(ctx context.Context) (int64, error) {
	const op = "storage.PurgeUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var deleted int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"payments", "premium_changes", "subscriptions", "activity_logs"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users`)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}

// UserExists проверяет наличие пользователя.
func (s *Storage) UserExists(ctx context.Context, id int64) (bool, error) {
	const op = "storage.UserExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	if err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
