package request

import (
	"strconv"
)

// WebhookNotification is the lean payload the gateway pushes. Only the
// transaction id is trusted; full detail is re-fetched from the gateway.
type WebhookNotification struct {
	Action string       `json:"action"`
	Type   string       `json:"type"`
	Data   *WebhookData `json:"data"`
}

type WebhookData struct {
	ID any `json:"id"`
}

// TransactionID normalizes the id, which the gateway sends either as a
// JSON number or a string.
func (n *WebhookNotification) TransactionID() string {
	if n.Data == nil {
		return ""
	}
	switch v := n.Data.ID.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; gateway ids are integral.
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}
