package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

func TestBasicStats_LegacyStatusesCountAsClosed(t *testing.T) {
	tickets := []domain.Ticket{
		{TicketID: 1, Status: "Closed"},
		{TicketID: 2, Status: "Completed"},
		{TicketID: 3, Status: "Complete"},
		{TicketID: 4, Status: "New"},
	}

	counts := BasicStats(tickets)
	assert.Equal(t, 3, counts[domain.TicketStatusClosed])
	assert.Equal(t, 1, counts[domain.TicketStatusNew])
}

func TestDailySummary(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{TicketID: 1, Status: "New", CreatedAt: day.Add(2 * time.Hour)},
		{TicketID: 2, Status: "Completed", CreatedAt: day.Add(5 * time.Hour)},
		{TicketID: 3, Status: "Closed", CreatedAt: day.Add(26 * time.Hour)}, // next day
		{TicketID: 4, Status: "New", CreatedAt: day.Add(-time.Hour)},       // previous day
	}

	summary := DailySummary(tickets, day.Add(12*time.Hour))
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.Closed)
	assert.Equal(t, 1, summary.Open)
}

// A ticket created 50 hours ago against a 48 hour threshold is 2 hours
// overdue.
func TestOverdue_HoursPastThreshold(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := created.Add(50 * time.Hour)

	tickets := []domain.Ticket{
		{TicketID: 101, Status: "New", CreatedAt: created},
	}

	overdue := Overdue(tickets, now, DefaultOverdueAfter)
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(101), overdue[0].Ticket.TicketID)
	assert.Equal(t, 2, overdue[0].HoursOverdue)
}

func TestOverdue_ExcludesTerminalAndRecentTickets(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{TicketID: 1, Status: "New", CreatedAt: now.Add(-24 * time.Hour)},        // too recent
		{TicketID: 2, Status: "Closed", CreatedAt: now.Add(-100 * time.Hour)},    // terminal
		{TicketID: 3, Status: "Completed", CreatedAt: now.Add(-100 * time.Hour)}, // terminal via alias
		{TicketID: 4, Status: "Cancelled", CreatedAt: now.Add(-100 * time.Hour)}, // terminal
		{TicketID: 5, Status: "Pending", CreatedAt: now.Add(-72 * time.Hour)},
	}

	overdue := Overdue(tickets, now, DefaultOverdueAfter)
	require.Len(t, overdue, 1)
	assert.Equal(t, int64(5), overdue[0].Ticket.TicketID)
	assert.Equal(t, 24, overdue[0].HoursOverdue)
}

func TestOverdue_ExactlyAtThresholdNotOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{TicketID: 1, Status: "New", CreatedAt: now.Add(-DefaultOverdueAfter)},
	}
	assert.Empty(t, Overdue(tickets, now, DefaultOverdueAfter))
}

func TestCountByType(t *testing.T) {
	tickets := []domain.Ticket{
		{TicketID: 1, Type: "Incident"},
		{TicketID: 2, Type: "Incident"},
		{TicketID: 3, Type: "Service Request"},
	}
	counts := CountByType(tickets)
	assert.Equal(t, 2, counts["Incident"])
	assert.Equal(t, 1, counts["Service Request"])
}
