package catalog

import (
	"context"
	"time"
)

// Event kinds published by the Store.
const (
	EventAccountRegistered = "account_registered"
	EventResidenceCreated  = "residence_created"
	EventPlaylistCreated   = "playlist_created"
	EventPlaylistSongAdded = "playlist_song_added"
)

// Event is a notification of a catalog write.
type Event struct {
	Kind     string            `json:"kind"`
	EntityID string            `json:"entity_id"`
	At       time.Time         `json:"at"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

// EventPublisher delivers events. Delivery failures are logged by the Store
// and never fail the write that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
