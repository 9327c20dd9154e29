package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus_CanonicalValues(t *testing.T) {
	for _, status := range AllStatuses {
		assert.Equal(t, status, NormalizeStatus(string(status)))
	}
}

func TestNormalizeStatus_LegacyAliases(t *testing.T) {
	assert.Equal(t, TicketStatusClosed, NormalizeStatus("Completed"))
	assert.Equal(t, TicketStatusClosed, NormalizeStatus("Complete"))
	assert.Equal(t, TicketStatusClosed, NormalizeStatus("completed"))
	assert.Equal(t, TicketStatusClosed, NormalizeStatus("COMPLETE"))
}

func TestNormalizeStatus_CaseAndWhitespace(t *testing.T) {
	assert.Equal(t, TicketStatusInProgress, NormalizeStatus("  in progress "))
	assert.Equal(t, TicketStatusOnHold, NormalizeStatus("ON HOLD"))
	assert.Equal(t, TicketStatusCancelled, NormalizeStatus("canceled"))
}

func TestNormalizeStatus_UnknownPassesThrough(t *testing.T) {
	got := NormalizeStatus(" Escalated ")
	assert.Equal(t, TicketStatus("Escalated"), got)
	assert.False(t, got.IsValid())
}

func TestTicketStatus_IsOpen(t *testing.T) {
	assert.True(t, TicketStatusNew.IsOpen())
	assert.True(t, TicketStatusPending.IsOpen())
	assert.True(t, TicketStatusOnHold.IsOpen())
	assert.False(t, TicketStatusClosed.IsOpen())
	assert.False(t, TicketStatusCancelled.IsOpen())
	assert.False(t, TicketStatusRejected.IsOpen())
}

func TestNormalizeTickets(t *testing.T) {
	tickets := []Ticket{
		{TicketID: 1, Status: "Completed"},
		{TicketID: 2, Status: "new"},
	}
	NormalizeTickets(tickets)
	assert.Equal(t, TicketStatusClosed, tickets[0].Status)
	assert.Equal(t, TicketStatusNew, tickets[1].Status)
}
