package rabbitmq

import "github.com/magabrotheeeer/iq-fit/internal/models"

// Имена очередей notifier.
const (
	QueuePayment  = "notifications.payment"
	QueueExpiring = "notifications.expiring"
	QueueContact  = "notifications.contact"
)

// GetNotificationQueues очереди, которые слушает notifier.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueuePayment, RoutingKey: models.RoutingPaymentCompleted},
		{QueueName: QueueExpiring, RoutingKey: models.RoutingSubscriptionExpiring},
		{QueueName: QueueContact, RoutingKey: models.RoutingMessageReceived},
	}
}
