package sync

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/events"
	"github.com/spec-kit/ticket-sync/internal/observability"
)

// TicketFetcher is the slice of the backend client the monitor needs.
type TicketFetcher interface {
	FetchTickets(ctx context.Context) ([]domain.Ticket, error)
}

// MonitorDependencies bundles collaborators for the monitor.
type MonitorDependencies struct {
	Fetcher    TicketFetcher
	Cache      *Cache
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// MonitorOptions carries the timing knobs.
type MonitorOptions struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
	RetryTimeout time.Duration
}

// Monitor owns the connectivity snapshot and the in-memory ticket
// collection. Every poll or manual retry resolves to one of the three
// connectivity states; polling never raises to the caller.
//
// Responses carry a sequence number taken at dispatch; a response whose
// number is below the last applied one lost the race to a newer attempt and
// is discarded, so a stale in-flight poll can never clobber fresher state.
type Monitor struct {
	fetcher    TicketFetcher
	cache      *Cache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	opts       MonitorOptions

	mu          sync.Mutex
	nextSeq     uint64
	appliedSeq  uint64
	snapshot    domain.ConnectivitySnapshot
	tickets     []domain.Ticket
}

// NewMonitor constructs a monitor in the optimistic Connected state.
func NewMonitor(deps MonitorDependencies, opts MonitorOptions) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 4 * time.Second
	}
	if opts.RetryTimeout <= 0 {
		opts.RetryTimeout = 15 * time.Second
	}
	return &Monitor{
		fetcher:    deps.Fetcher,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		opts:       opts,
		snapshot:   domain.InitialSnapshot(),
		tickets:    []domain.Ticket{},
	}
}

// Run polls immediately and then on the fixed interval until ctx is
// cancelled. The cadence never changes with state: polling is the only path
// back to Connected.
func (m *Monitor) Run(ctx context.Context) {
	m.Poll(ctx)

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Poll(ctx)
		}
	}
}

// Poll performs one automatic poll with the short timeout.
func (m *Monitor) Poll(ctx context.Context) domain.ConnectivitySnapshot {
	return m.attempt(ctx, m.opts.PollTimeout, false)
}

// ManualRetry performs a user-initiated poll with the longer timeout. A
// failed retry increments the retry count; success resets it like any poll.
func (m *Monitor) ManualRetry(ctx context.Context) domain.ConnectivitySnapshot {
	return m.attempt(ctx, m.opts.RetryTimeout, true)
}

func (m *Monitor) attempt(ctx context.Context, timeout time.Duration, manual bool) domain.ConnectivitySnapshot {
	m.mu.Lock()
	m.nextSeq++
	seq := m.nextSeq
	m.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tickets, err := m.fetcher.FetchTickets(fetchCtx)
	if err != nil {
		return m.applyFailure(ctx, seq, err, manual)
	}
	return m.applySuccess(ctx, seq, tickets)
}

func (m *Monitor) applySuccess(ctx context.Context, seq uint64, tickets []domain.Ticket) domain.ConnectivitySnapshot {
	now := time.Now().UTC()

	m.mu.Lock()
	if seq <= m.appliedSeq {
		stale := m.snapshot
		m.mu.Unlock()
		m.logger.Debug("discarding stale poll response", zap.Uint64("seq", seq))
		return stale
	}
	m.appliedSeq = seq
	m.snapshot = domain.ConnectivitySnapshot{
		State:              domain.StateConnected,
		LastSuccessfulSync: &now,
		LastError:          nil,
		RetryCount:         0,
		Seq:                seq,
	}
	// Reconciliation: server truth replaces the whole collection, which
	// discards any optimistic edit the server has not yet reflected.
	m.tickets = append([]domain.Ticket(nil), tickets...)
	snap := m.snapshot
	// The cache write stays under the lock so two racing successes cannot
	// land their durable snapshots out of order.
	if err := m.cache.Write(ctx, tickets); err != nil {
		m.logger.Warn("ticket cache write failed", zap.Error(err))
	}
	m.mu.Unlock()

	m.metrics.RecordPoll(domain.StateConnected)
	m.publish(ctx, snap, len(tickets), true)
	return snap
}

func (m *Monitor) applyFailure(ctx context.Context, seq uint64, err error, manual bool) domain.ConnectivitySnapshot {
	syncErr := asSyncError(err)
	state := domain.StateServerError
	if syncErr.Classification == domain.ErrClassNetwork {
		state = domain.StateOffline
	}

	m.mu.Lock()
	if seq <= m.appliedSeq {
		stale := m.snapshot
		m.mu.Unlock()
		m.logger.Debug("discarding stale poll response", zap.Uint64("seq", seq))
		return stale
	}
	m.appliedSeq = seq
	retries := m.snapshot.RetryCount
	if manual {
		retries++
	}
	m.snapshot = domain.ConnectivitySnapshot{
		State:              state,
		LastSuccessfulSync: m.snapshot.LastSuccessfulSync,
		LastError:          syncErr,
		RetryCount:         retries,
		Seq:                seq,
	}
	snap := m.snapshot
	m.mu.Unlock()

	m.metrics.RecordPoll(state)
	m.logger.Warn("poll failed",
		zap.String("state", string(state)),
		zap.String("classification", string(syncErr.Classification)),
		zap.String("message", syncErr.Message))
	m.publish(ctx, snap, 0, false)
	return snap
}

func (m *Monitor) publish(ctx context.Context, snap domain.ConnectivitySnapshot, count int, refreshed bool) {
	_ = m.dispatcher.Publish(ctx, events.Event{
		Type:    events.EventConnectivityChanged,
		Payload: events.ConnectivityChangedPayload{Snapshot: snap},
	})
	if refreshed {
		_ = m.dispatcher.Publish(ctx, events.Event{
			Type:    events.EventTicketsRefreshed,
			Payload: events.TicketsRefreshedPayload{Count: count, Seq: snap.Seq},
		})
	}
}

// Snapshot returns the current connectivity snapshot.
func (m *Monitor) Snapshot() domain.ConnectivitySnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Tickets returns a copy of the in-memory collection.
func (m *Monitor) Tickets() []domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Ticket(nil), m.tickets...)
}

// EffectiveTickets returns what the UI should render given the current
// connectivity state: the live collection or the cached fallback.
func (m *Monitor) EffectiveTickets(ctx context.Context) []domain.Ticket {
	m.mu.Lock()
	state := m.snapshot.State
	live := append([]domain.Ticket(nil), m.tickets...)
	m.mu.Unlock()
	return m.cache.EffectiveView(ctx, state, live)
}

// Ticket looks up one ticket in the in-memory collection.
func (m *Monitor) Ticket(id int64) (domain.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.TicketID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// UpdateTicket applies fn to the matching ticket in place and returns the
// pre-mutation value for rollback. Used by the optimistic applier.
func (m *Monitor) UpdateTicket(id int64, fn func(*domain.Ticket)) (domain.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tickets {
		if m.tickets[i].TicketID == id {
			prev := m.tickets[i]
			fn(&m.tickets[i])
			return prev, true
		}
	}
	return domain.Ticket{}, false
}

// RestoreTicket puts a previously captured ticket value back, keyed by its
// ID. A no-op if the ticket has since left the collection.
func (m *Monitor) RestoreTicket(prev domain.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tickets {
		if m.tickets[i].TicketID == prev.TicketID {
			m.tickets[i] = prev
			return
		}
	}
}

// RemoveTicket drops the matching ticket from the in-memory collection.
func (m *Monitor) RemoveTicket(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tickets {
		if m.tickets[i].TicketID == id {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			return true
		}
	}
	return false
}

func asSyncError(err error) *domain.SyncError {
	var syncErr *domain.SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}
	return &domain.SyncError{
		Classification: domain.ErrClassNetwork,
		Message:        "unable to reach server",
		Detail:         err.Error(),
	}
}
