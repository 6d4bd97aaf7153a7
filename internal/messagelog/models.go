package messagelog

import "time"

// Entry is one processed message persisted for history lookups.
type Entry struct {
	EventID     string    `bson:"event_id" json:"event_id"`
	Instance    string    `bson:"instance" json:"instance"`
	ChatJID     string    `bson:"chat_jid" json:"chat_jid"`
	SenderJID   string    `bson:"sender_jid,omitempty" json:"sender_jid,omitempty"`
	FromMe      bool      `bson:"from_me" json:"from_me"`
	MessageType string    `bson:"message_type" json:"message_type"`
	Content     string    `bson:"content,omitempty" json:"content,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}
