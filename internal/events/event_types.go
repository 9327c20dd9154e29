package events

import (
	"time"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTaxonomyChanged     EventType = "taxonomy_changed"
	EventConnectivityChanged EventType = "connectivity_changed"
	EventTicketsRefreshed    EventType = "tickets_refreshed"
)

// Event represents a change notification published on the bus.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TaxonomyChangedPayload carries the full post-mutation tree. Subscribers
// that may have missed earlier events should re-read from storage rather
// than trust the payload alone.
type TaxonomyChangedPayload struct {
	Operation string              `json:"operation"`
	Tree      domain.TaxonomyTree `json:"tree"`
}

// ConnectivityChangedPayload carries the new connectivity snapshot.
type ConnectivityChangedPayload struct {
	Snapshot domain.ConnectivitySnapshot `json:"snapshot"`
}

// TicketsRefreshedPayload announces a collection replacement after a
// successful poll.
type TicketsRefreshedPayload struct {
	Count int    `json:"count"`
	Seq   uint64 `json:"seq"`
}
