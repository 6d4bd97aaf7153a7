package gateway

// SendResponse acknowledges an accepted outbound message.
type SendResponse struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
}

// DeleteResponse acknowledges an accepted message deletion.
type DeleteResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ContactCheckRequest carries the raw identifiers to canonicalize.
type ContactCheckRequest struct {
	Numbers []string `json:"numbers"`
}

// ContactCheckResult maps one raw identifier to its canonical form.
// Canonicalization is total: malformed inputs yield their degenerate
// canonical form rather than an error.
type ContactCheckResult struct {
	Query   string `json:"query"`
	JID     string `json:"jid"`
	IsGroup bool   `json:"isGroup"`
}

// ConnectRequest optionally pins the JID the instance is logged in as.
type ConnectRequest struct {
	JID string `json:"jid"`
}

// InstanceActionResponse acknowledges a session state change.
type InstanceActionResponse struct {
	Instance string `json:"instance"`
	Status   string `json:"status"`
}
