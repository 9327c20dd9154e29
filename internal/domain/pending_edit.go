package domain

import "time"

// EditStatus tracks the lifecycle of an optimistic mutation.
type EditStatus string

const (
	EditStatusPending   EditStatus = "pending"
	EditStatusConfirmed EditStatus = "confirmed"
	EditStatusFailed    EditStatus = "failed"
)

// PendingEdit records one in-flight optimistic change. It lives only in
// memory; edits never survive a restart.
type PendingEdit struct {
	ID          string            `json:"id"`
	TicketID    int64             `json:"ticket_id"`
	Diff        map[string]string `json:"diff"`
	SubmittedAt time.Time         `json:"submitted_at"`
	Status      EditStatus        `json:"status"`
}
