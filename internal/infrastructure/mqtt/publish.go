package mqtt

import "fmt"

// maxPayloadSize caps a single message. Catalog events are a few hundred bytes.
const maxPayloadSize = 64 << 10

// checkPublish validates arguments without touching the network.
func checkPublish(topic string, payload []byte, qos byte) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return fmt.Errorf("%w: got %d", ErrInvalidQoS, qos)
	case len(payload) > maxPayloadSize:
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}
	return nil
}

// Publish sends payload to topic and waits for the broker acknowledgement
// that qos requires, up to defaultPublishTimeout.
//
// Parameters:
//   - topic: full topic, usually built with Topics (e.g. "emotionalsongs/events/playlist_created")
//   - payload: message body, at most 64 KiB (catalog events are JSON)
//   - qos: 0, 1 or 2
//   - retained: keep the message for late subscribers; only the status topic uses this
//
// Returns:
//   - ErrInvalidTopic, ErrInvalidQoS or ErrPayloadTooLarge for bad arguments
//   - ErrNotConnected while the broker link is down
//   - ErrPublishFailed (wrapped, with the topic) on timeout or broker error
//
// Example:
//
//	topic := client.Topics().Event(catalog.EventPlaylistCreated)
//	err := client.Publish(topic, payload, 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	// Validate inputs
	if err := checkPublish(topic, payload, qos); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Publish and wait for the ack
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: no ack within %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}
