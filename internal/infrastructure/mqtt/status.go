package mqtt

import (
	"encoding/json"
	"time"
)

// Service states published on Topics.Status.
const (
	statusOnline  = "online"
	statusOffline = "offline"
)

// Reasons attached to an offline status.
const (
	reasonShutdown   = "graceful_shutdown"
	reasonConnection = "unexpected_disconnect"
)

// statusMessage is the retained payload on the status topic.
type statusMessage struct {
	Status    string    `json:"status"`
	ClientID  string    `json:"client_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// encode renders m. Marshalling a struct of strings and a time cannot fail.
func (m statusMessage) encode() []byte {
	b, _ := json.Marshal(m) //nolint:errcheck // see doc comment
	return b
}

func onlineStatus(clientID string, now time.Time) []byte {
	return statusMessage{Status: statusOnline, ClientID: clientID, Timestamp: now.UTC()}.encode()
}

func offlineStatus(clientID, reason string, now time.Time) []byte {
	return statusMessage{Status: statusOffline, ClientID: clientID, Reason: reason, Timestamp: now.UTC()}.encode()
}
