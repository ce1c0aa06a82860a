package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is used when the configuration leaves topic_prefix empty.
const DefaultTopicPrefix = "emotionalsongs"

// Topics builds the service's MQTT topics under a prefix.
//
//	topics := mqtt.NewTopics("emotionalsongs")
//	topics.Event("playlist_created")
//	// Returns: "emotionalsongs/events/playlist_created"
type Topics struct {
	prefix string
}

// NewTopics returns a builder for prefix. Surrounding slashes are trimmed.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the topic root.
func (t Topics) Prefix() string {
	return t.prefix
}

// Event returns the topic for catalog events of one kind.
//
// Example: emotionalsongs/events/account_registered
func (t Topics) Event(kind string) string {
	return fmt.Sprintf("%s/events/%s", t.prefix, kind)
}

// AllEvents returns a pattern matching every catalog event.
//
// Pattern: emotionalsongs/events/+
func (t Topics) AllEvents() string {
	return fmt.Sprintf("%s/events/+", t.prefix)
}

// Status returns the retained service status topic, also used as the LWT topic.
//
// Example: emotionalsongs/system/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/system/status", t.prefix)
}
