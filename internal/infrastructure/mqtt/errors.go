package mqtt

import "errors"

var (
	// ErrNotConnected means the broker link is down. Catalog writes that
	// triggered the event have already committed.
	ErrNotConnected = errors.New("mqtt: not connected to broker")

	// ErrConnectionFailed wraps the cause of a failed initial connect.
	ErrConnectionFailed = errors.New("mqtt: connect failed")

	// ErrPublishFailed wraps a broker-side or timeout publish failure.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrPayloadTooLarge is returned before sending a payload above maxPayloadSize.
	ErrPayloadTooLarge = errors.New("mqtt: payload too large")

	// ErrInvalidQoS is returned for a QoS above 2.
	ErrInvalidQoS = errors.New("mqtt: qos must be 0, 1 or 2")

	// ErrInvalidTopic is returned for an empty topic or an event without a kind.
	ErrInvalidTopic = errors.New("mqtt: empty topic")
)
