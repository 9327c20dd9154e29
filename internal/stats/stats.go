// Package stats computes the dashboard aggregations over a ticket
// collection. Every path normalizes statuses first, so legacy values like
// "Completed" count with Closed everywhere.
package stats

import (
	"time"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

// DefaultOverdueAfter is the age past which an open ticket is overdue.
const DefaultOverdueAfter = 48 * time.Hour

// BasicStats counts tickets per canonical status.
func BasicStats(tickets []domain.Ticket) map[domain.TicketStatus]int {
	counts := make(map[domain.TicketStatus]int, len(domain.AllStatuses))
	for _, t := range tickets {
		counts[domain.NormalizeStatus(string(t.Status))]++
	}
	return counts
}

// DaySummary aggregates one calendar day.
type DaySummary struct {
	Created int
	Closed  int
	Open    int
}

// DailySummary reports created/closed/open counts for the calendar day
// containing day, in day's location.
func DailySummary(tickets []domain.Ticket, day time.Time) DaySummary {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var summary DaySummary
	for _, t := range tickets {
		status := domain.NormalizeStatus(string(t.Status))
		if !t.CreatedAt.Before(start) && t.CreatedAt.Before(end) {
			summary.Created++
			if status == domain.TicketStatusClosed {
				summary.Closed++
			}
			if status.IsOpen() {
				summary.Open++
			}
		}
	}
	return summary
}

// OverdueTicket pairs a ticket with how many whole hours past the threshold
// it has been waiting.
type OverdueTicket struct {
	Ticket       domain.Ticket
	HoursOverdue int
}

// Overdue lists open tickets older than the threshold, oldest first in input
// order. now is injected so callers control the clock.
func Overdue(tickets []domain.Ticket, now time.Time, after time.Duration) []OverdueTicket {
	if after <= 0 {
		after = DefaultOverdueAfter
	}

	out := []OverdueTicket{}
	for _, t := range tickets {
		status := domain.NormalizeStatus(string(t.Status))
		if !status.IsOpen() {
			continue
		}
		age := now.Sub(t.CreatedAt)
		if age <= after {
			continue
		}
		out = append(out, OverdueTicket{
			Ticket:       t.Normalize(),
			HoursOverdue: int((age - after).Hours()),
		})
	}
	return out
}

// CountByType counts tickets per taxonomy Type.
func CountByType(tickets []domain.Ticket) map[string]int {
	counts := make(map[string]int)
	for _, t := range tickets {
		counts[t.Type]++
	}
	return counts
}
