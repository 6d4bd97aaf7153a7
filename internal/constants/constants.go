package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixSession = "session:"
)

const (
	DefaultInboundTopic   = "inbound_events"
	DefaultProcessedTopic = "processed_events"
)

const (
	DefaultMongoDBName = "wagate"
)

const (
	DefaultMigrationsPath = "migrations/postgres"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit       = 100
	MaxLimit           = 1000
	DefaultTruncateLen = 100
)

const (
	DefaultSessionTTLSeconds = 3600
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

const (
	InstanceStateConnected    = "connected"
	InstanceStateConnecting   = "connecting"
	InstanceStateDisconnected = "disconnected"
)

const (
	WebhookEventMessage = "message"
	WebhookEventReceipt = "receipt"
	WebhookEventStatus  = "status"
)

const (
	ServiceNameGateway  = "gateway-service"
	ServiceNameDispatch = "dispatch-service"
)
