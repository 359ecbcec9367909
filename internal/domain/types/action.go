package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseConnected  = "database_connected"
	ActionDatabaseMigrated   = "database_migrated"
	ActionEventPublishFailed = "event_publish_failed"
)
