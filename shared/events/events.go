// Package events carries the lifecycle-event contract between services:
// the envelope, the stream names, the routing keys, and the Redis Streams
// publisher and subscriber.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Streams, one per owning entity. Consumer groups play the role of durable
// queues bound to these streams.
const (
	CustomerEventsStream = "customer.events"
	AccountEventsStream  = "account.events"
	UserEventsStream     = "user.events"
)

// Routing keys follow the pattern <entity>.event.<created|updated|deleted>.
const (
	CustomerCreated = "customer.event.created"
	CustomerUpdated = "customer.event.updated"
	CustomerDeleted = "customer.event.deleted"

	AccountCreated = "account.event.created"
	AccountUpdated = "account.event.updated"
	AccountDeleted = "account.event.deleted"

	UserCreated = "user.event.created"
	UserUpdated = "user.event.updated"
	UserDeleted = "user.event.deleted"
)

// Event is the envelope every lifecycle event travels in. For created and
// updated events Data holds the full entity snapshot; for deleted events it
// holds just the identifier.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// DecodeData unmarshals the envelope payload into target. Payloads arrive as
// generic JSON values after transport, so they are re-marshalled first.
func (e Event) DecodeData(target any) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to re-marshal event data: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// DeletedPayload is the bare-identifier payload of a deleted event.
type DeletedPayload struct {
	ID int64 `json:"id"`
}
