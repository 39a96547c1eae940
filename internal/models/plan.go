package models

import (
	"math"
	"time"
)

// Plan тарифный план.
type Plan struct {
	ID           int64   `json:"id"`
	PlanName     string  `json:"planName"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"durationDays"`
}

// Subscription подписка пользователя на план. После создания не изменяется.
type Subscription struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	Plan      *Plan `json:"plan,omitempty"`
	StartDate Date  `json:"startDate"`
	EndDate   Date  `json:"endDate"`
	IsActive  bool  `json:"isActive"`
}

// NewSubscription создаёт активную подписку, начинающуюся в start.
// Дата окончания вычисляется один раз и больше не пересчитывается.
func NewSubscription(userID int64, plan *Plan, start Date) Subscription {
	return Subscription{
		UserID:    userID,
		Plan:      plan,
		StartDate: start,
		EndDate:   start.AddDays(plan.DurationDays),
		IsActive:  true,
	}
}

// PaymentStatusPaid статус успешного платежа.
const PaymentStatusPaid = "PAID"

// Payment платёж за подписку. После создания не изменяется.
type Payment struct {
	ID            int64         `json:"id"`
	Reference     string        `json:"reference"`
	User          *User         `json:"user,omitempty"`
	Subscription  *Subscription `json:"subscription,omitempty"`
	Amount        float64       `json:"amount"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        string        `json:"status"`
	PaymentDate   time.Time     `json:"paymentDate"`
}

// Purchase запрос на покупку плана.
type Purchase struct {
	UserID        int64
	PlanID        int64
	Amount        float64
	PaymentMethod string
}

// Charge возвращает сумму к списанию. Нулевая сумма означает цену плана,
// ненулевая должна совпадать с ценой с точностью до копейки.
func (p Purchase) Charge(plan *Plan) (float64, error) {
	if p.Amount == 0 {
		return plan.Price, nil
	}
	if cents(p.Amount) != cents(plan.Price) {
		return 0, ErrAmountMismatch
	}
	return plan.Price, nil
}

func cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
