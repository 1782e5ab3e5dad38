package rabbitmq

// Exchange обменник уведомлений.
const Exchange = "notifications"

// Ключи маршрутизации уведомлений планировщика.
const (
	RoutingCredentialAlert = "credential_alert"
	RoutingExpiringClient  = "expiring_client"
)

const prefetch = 10

// QueueConfig очередь и ключ, которым она привязана к обменнику.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// NotificationQueues очереди, которые читает отправщик писем.
func NotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "alerts.credential", RoutingKey: RoutingCredentialAlert},
		{QueueName: "alerts.expiring", RoutingKey: RoutingExpiringClient},
	}
}
