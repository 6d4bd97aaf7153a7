package session

import "time"

// State is the connection state of a messaging instance.
type State struct {
	Instance    string    `json:"instance"`
	Status      string    `json:"status"`
	JID         string    `json:"jid,omitempty"`
	ConnectedAt time.Time `json:"connected_at,omitempty"`
	LastSeen    time.Time `json:"last_seen"`
}
