package observability

import (
	"sync"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

// Metrics provides basic in-memory counters for sync activity.
type Metrics struct {
	mu            sync.Mutex
	pollCount     map[domain.ConnectivityState]int64
	mutationCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		pollCount:     make(map[domain.ConnectivityState]int64),
		mutationCount: make(map[string]int64),
	}
}

// RecordPoll increments the counter for the state a poll resolved to.
func (m *Metrics) RecordPoll(state domain.ConnectivityState) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollCount[state]++
}

// RecordMutation increments counters for optimistic mutations by kind and outcome.
func (m *Metrics) RecordMutation(kind string, ok bool) {
	if m == nil {
		return
	}
	key := kind + "|ok"
	if !ok {
		key = kind + "|failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutationCount[key]++
}

// PollCount returns how many polls resolved to the given state.
func (m *Metrics) PollCount(state domain.ConnectivityState) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollCount[state]
}

// MutationCount returns the counter for a mutation kind and outcome.
func (m *Metrics) MutationCount(kind string, ok bool) int64 {
	if m == nil {
		return 0
	}
	key := kind + "|ok"
	if !ok {
		key = kind + "|failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutationCount[key]
}
