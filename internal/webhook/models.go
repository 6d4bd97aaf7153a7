package webhook

import "time"

// Webhook is a per-instance subscription to processed events.
type Webhook struct {
	ID               string    `json:"id"`
	Instance         string    `json:"instance"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	Events           []string  `json:"events"`
	FilterExpression string    `json:"filter_expression,omitempty"`
	Enabled          bool      `json:"enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
	DeliveryStatusSkipped   = "skipped"
)

// Delivery records the outcome of one delivery attempt chain.
type Delivery struct {
	ID          string     `json:"id"`
	WebhookID   string     `json:"webhook_id"`
	EventID     string     `json:"event_id"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
