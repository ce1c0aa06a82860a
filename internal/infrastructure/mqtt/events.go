package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
)

// publisher is the part of Client used by EventPublisher.
type publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// EventPublisher publishes catalog events as JSON, one topic per event kind.
// It implements catalog.EventPublisher.
type EventPublisher struct {
	client publisher
	topics Topics
	qos    byte
}

var _ catalog.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher publishes through client under its configured prefix.
//
// Example:
//
//	store := catalog.NewStore(db, db.Dialect(),
//		catalog.WithPublisher(mqtt.NewEventPublisher(client, 1)))
func NewEventPublisher(client *Client, qos byte) *EventPublisher {
	return &EventPublisher{client: client, topics: client.Topics(), qos: qos}
}

// Publish implements catalog.EventPublisher. Events are not retained.
//
// The event is encoded as JSON and sent to Topics.Event(e.Kind), e.g.
// "emotionalsongs/events/account_registered".
//
// Returns:
//   - ctx.Err() if ctx is already done
//   - ErrInvalidTopic (wrapped) when e.Kind is empty
//   - any error from Client.Publish
func (p *EventPublisher) Publish(ctx context.Context, e catalog.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Kind == "" {
		return fmt.Errorf("%w: event has no kind", ErrInvalidTopic)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", e.Kind, err)
	}
	return p.client.Publish(p.topics.Event(e.Kind), payload, p.qos, false)
}
