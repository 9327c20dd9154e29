package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusClosed     TicketStatus = "Closed"
	TicketStatusCancelled  TicketStatus = "Cancelled"
	TicketStatusOnHold     TicketStatus = "On Hold"
	TicketStatusRejected   TicketStatus = "Rejected"
)

// AllStatuses lists the canonical status values in display order.
var AllStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInProgress,
	TicketStatusPending,
	TicketStatusClosed,
	TicketStatusCancelled,
	TicketStatusOnHold,
	TicketStatusRejected,
}

// NormalizeStatus maps a raw status string to its canonical enum value.
// Legacy aliases "Completed" and "Complete" fold into Closed. Unrecognized
// values are returned trimmed; callers that must enforce the enum check
// IsValid afterwards.
func NormalizeStatus(raw string) TicketStatus {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "new":
		return TicketStatusNew
	case "in progress":
		return TicketStatusInProgress
	case "pending":
		return TicketStatusPending
	case "closed", "completed", "complete":
		return TicketStatusClosed
	case "cancelled", "canceled":
		return TicketStatusCancelled
	case "on hold":
		return TicketStatusOnHold
	case "rejected":
		return TicketStatusRejected
	default:
		return TicketStatus(trimmed)
	}
}

// IsValid reports whether the status is one of the canonical values.
func (s TicketStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsOpen reports whether a ticket in this status still needs attention.
func (s TicketStatus) IsOpen() bool {
	switch s {
	case TicketStatusClosed, TicketStatusCancelled, TicketStatusRejected:
		return false
	}
	return true
}

// Ticket is the aggregate for support requests as served by the backend.
type Ticket struct {
	TicketID       int64        `json:"Ticket ID"`
	RequesterName  string       `json:"name"`
	RequesterEmail string       `json:"email"`
	RequesterPhone string       `json:"phone"`
	Request        string       `json:"request"`
	Report         string       `json:"report"`
	Status         TicketStatus `json:"status"`
	Type           string       `json:"type"`
	CreatedAt      time.Time    `json:"created"`
	AppointmentAt  *time.Time   `json:"appointment,omitempty"`
}

// Normalize returns a copy with the status folded to its canonical value.
func (t Ticket) Normalize() Ticket {
	t.Status = NormalizeStatus(string(t.Status))
	return t
}

// NormalizeTickets normalizes every ticket's status in place and returns the
// slice for chaining.
func NormalizeTickets(tickets []Ticket) []Ticket {
	for i := range tickets {
		tickets[i] = tickets[i].Normalize()
	}
	return tickets
}
