package models

import "time"

// Ключи маршрутизации событий в обменнике notifications.
const (
	RoutingPaymentCompleted     = "payment.completed"
	RoutingSubscriptionExpiring = "subscription.expiring"
	RoutingMessageReceived      = "message.received"
)

// PaymentCompletedEvent публикуется после фиксации покупки плана.
type PaymentCompletedEvent struct {
	PaymentID int64     `json:"payment_id"`
	Reference string    `json:"reference"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	PlanName  string    `json:"plan_name"`
	Amount    float64   `json:"amount"`
	EndDate   Date      `json:"end_date"`
	PaidAt    time.Time `json:"paid_at"`
}

// ExpiringSubscription подписка, срок которой скоро истекает.
type ExpiringSubscription struct {
	SubscriptionID int64  `json:"subscription_id"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	PlanName       string `json:"plan_name"`
	EndDate        Date   `json:"end_date"`
}

// MessageReceivedEvent публикуется после отправки формы обратной связи.
type MessageReceivedEvent struct {
	MessageID int64  `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
}
