package models

import (
	"time"

	"wagate/internal/classify"
)

// InboundEvent is the broker payload carrying a raw message envelope from a
// connected instance into the dispatch pipeline.
type InboundEvent struct {
	ID        string             `json:"id"`
	Instance  string             `json:"instance"`
	Timestamp time.Time          `json:"timestamp"`
	Envelope  *classify.Envelope `json:"envelope"`
	Metadata  Metadata           `json:"metadata"`
}

// ProcessedEvent is the canonicalized, classified form of an inbound event.
type ProcessedEvent struct {
	ID          string    `json:"id"`
	Instance    string    `json:"instance"`
	Timestamp   time.Time `json:"timestamp"`
	ChatJID     string    `json:"chatJid"`
	SenderJID   string    `json:"senderJid,omitempty"`
	FromMe      bool      `json:"fromMe"`
	MessageType string    `json:"messageType"`
	Content     string    `json:"content,omitempty"`
	Metadata    Metadata  `json:"metadata"`
}

type Metadata struct {
	TraceID  string                 `json:"trace_id,omitempty"`
	Dispatch *DispatchInfo          `json:"dispatch,omitempty"`
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

type DispatchInfo struct {
	ProcessedAt time.Time `json:"processed_at"`
	MessageType string    `json:"message_type"`
}
