package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/iq-fit/internal/models"
)

const subscriptionColumns = `s.id, s.user_id, s.start_date, s.end_date, s.is_active,
	p.id, p.plan_name, p.description, p.price, p.duration_days`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var (
		sub        models.Subscription
		plan       models.Plan
		start, end time.Time
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &start, &end, &sub.IsActive,
		&plan.ID, &plan.PlanName, &plan.Description, &plan.Price, &plan.DurationDays); err != nil {
		return nil, err
	}
	sub.StartDate = models.NewDate(start)
	sub.EndDate = models.NewDate(end)
	sub.Plan = &plan
	return &sub, nil
}

// PurchasePlan оформляет покупку плана одной транзакцией: блокирует строку
// пользователя, создает подписку, включает премиум-статус и сохраняет платеж.
// При любой ошибке изменения откатываются целиком.
func (s *Storage) PurchasePlan(ctx context.Context, p models.Purchase) (*models.Payment, error) {
	const op = "storage.PurchasePlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var payment *models.Payment
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		user, err := scanUser(tx.QueryRow(ctx,
			`SELECT `+userColumns("")+` FROM users WHERE id = $1 FOR UPDATE`, p.UserID))
		if err != nil {
			return fmt.Errorf("user %d: %w", p.UserID, mapErr(err))
		}
		plan, err := scanPlan(tx.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, p.PlanID))
		if err != nil {
			return fmt.Errorf("plan %d: %w", p.PlanID, mapErr(err))
		}

		amount, err := p.Charge(plan)
		if err != nil {
			return err
		}

		sub := models.NewSubscription(user.ID, plan, models.Today())
		err = tx.QueryRow(ctx,
			`INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, is_active)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			sub.UserID, plan.ID, sub.StartDate.Time, sub.EndDate.Time, sub.IsActive,
		).Scan(&sub.ID)
		if err != nil {
			return mapErr(err)
		}

		if err = setPremium(ctx, tx, user.ID, true, models.PremiumCausePurchase, &sub.ID); err != nil {
			return err
		}
		user.IsPremium = true

		pay := &models.Payment{
			Reference:     uuid.NewString(),
			User:          user,
			Subscription:  &sub,
			Amount:        amount,
			PaymentMethod: p.PaymentMethod,
			Status:        models.PaymentStatusPaid,
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO payments (reference, user_id, subscription_id, amount, payment_method, status)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, payment_date`,
			pay.Reference, user.ID, sub.ID, pay.Amount, pay.PaymentMethod, pay.Status,
		).Scan(&pay.ID, &pay.PaymentDate)
		if err != nil {
			return mapErr(err)
		}
		payment = pay
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payment, nil
}

// ListPayments возвращает все платежи с пользователем, подпиской и планом.
func (s *Storage) ListPayments(ctx context.Context) ([]*models.Payment, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT pay.id, pay.reference::text, pay.amount, pay.payment_method, pay.status, pay.payment_date,
			      ` + userColumns("u") + `,
			      ` + subscriptionColumns + `
			  FROM payments pay
			  JOIN users u ON u.id = pay.user_id
			  JOIN subscriptions s ON s.id = pay.subscription_id
			  JOIN plans p ON p.id = s.plan_id
			  ORDER BY pay.payment_date DESC, pay.id DESC`
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Payment, 0)
	for rows.Next() {
		pay, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, pay)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var (
		pay        models.Payment
		u          models.User
		dob        *time.Time
		sub        models.Subscription
		plan       models.Plan
		start, end time.Time
	)
	if err := row.Scan(&pay.ID, &pay.Reference, &pay.Amount, &pay.PaymentMethod, &pay.Status, &pay.PaymentDate,
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &u.IsPremium, &u.Suspended,
		&dob, &u.Gender, &u.Bio, &u.Weight, &u.Height, &u.JoinDate,
		&sub.ID, &sub.UserID, &start, &end, &sub.IsActive,
		&plan.ID, &plan.PlanName, &plan.Description, &plan.Price, &plan.DurationDays); err != nil {
		return nil, err
	}
	if dob != nil {
		d := models.NewDate(*dob)
		u.DateOfBirth = &d
	}
	sub.StartDate = models.NewDate(start)
	sub.EndDate = models.NewDate(end)
	sub.Plan = &plan
	pay.User = &u
	pay.Subscription = &sub
	return &pay, nil
}

// ListUserSubscriptions возвращает подписки пользователя, новые сверху.
func (s *Storage) ListUserSubscriptions(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	const op = "storage.ListUserSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions s
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.user_id = $1
			  ORDER BY s.start_date DESC, s.id DESC`
	rows, err := s.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]*models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindSubscriptionsEndingOn находит активные подписки незаблокированных
// пользователей, которые заканчиваются в указанный день и по которым еще
// не отправлено напоминание. Подписки не изменяются.
func (s *Storage) FindSubscriptionsEndingOn(ctx context.Context, day models.Date) ([]models.ExpiringSubscription, error) {
	const op = "storage.FindSubscriptionsEndingOn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT s.id, u.email, u.full_name, p.plan_name, s.end_date
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  JOIN plans p ON p.id = s.plan_id
			  WHERE s.is_active AND s.end_date = $1 AND NOT u.suspended
			    AND NOT EXISTS (
			        SELECT 1 FROM subscription_reminders r
			        WHERE r.subscription_id = s.id AND r.end_date = s.end_date
			    )
			  ORDER BY s.id`
	rows, err := s.DB.Query(ctx, query, day.Time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.ExpiringSubscription, 0)
	for rows.Next() {
		var (
			e   models.ExpiringSubscription
			end time.Time
		)
		if err = rows.Scan(&e.SubscriptionID, &e.Email, &e.FullName, &e.PlanName, &end); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		e.EndDate = models.NewDate(end)
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ClaimReminder отмечает напоминание по подписке с датой окончания endDate
// как отправленное. Возвращает false, если отметка уже была.
func (s *Storage) ClaimReminder(ctx context.Context, subscriptionID int64, endDate models.Date) (bool, error) {
	const op = "storage.ClaimReminder"
	tag, err := s.DB.Exec(ctx,
		`INSERT INTO subscription_reminders (subscription_id, end_date) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		subscriptionID, endDate.Time)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ReleaseReminder снимает отметку, чтобы напоминание ушло при следующей проверке.
func (s *Storage) ReleaseReminder(ctx context.Context, subscriptionID int64, endDate models.Date) error {
	const op = "storage.ReleaseReminder"
	_, err := s.DB.Exec(ctx,
		`DELETE FROM subscription_reminders WHERE subscription_id = $1 AND end_date = $2`,
		subscriptionID, endDate.Time)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
