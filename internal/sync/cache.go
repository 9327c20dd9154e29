package sync

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/kv"
)

// Cache mirrors the last-known-good ticket collection into the durable
// store. It is strictly last-successful-snapshot: writes replace the whole
// value and never include unconfirmed optimistic edits.
type Cache struct {
	store  kv.Store
	logger *zap.Logger
}

// NewCache constructs a cache over the given store.
func NewCache(store kv.Store, logger *zap.Logger) *Cache {
	return &Cache{store: store, logger: logger}
}

// Write overwrites the cached collection. Called only on a successful poll.
func (c *Cache) Write(ctx context.Context, tickets []domain.Ticket) error {
	encoded, err := json.Marshal(tickets)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, kv.KeyTicketCache, string(encoded))
}

// Read returns the last written collection. Absent or corrupted values fall
// back to an empty collection; Read never fails.
func (c *Cache) Read(ctx context.Context) []domain.Ticket {
	raw, ok, err := c.store.Get(ctx, kv.KeyTicketCache)
	if err != nil {
		c.logger.Warn("ticket cache read failed", zap.Error(err))
		return []domain.Ticket{}
	}
	if !ok {
		return []domain.Ticket{}
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal([]byte(raw), &tickets); err != nil {
		c.logger.Warn("ticket cache corrupted, discarding", zap.Error(err))
		return []domain.Ticket{}
	}
	return domain.NormalizeTickets(tickets)
}

// EffectiveView returns the collection the UI should render: the live
// collection while Connected, the cached snapshot otherwise.
func (c *Cache) EffectiveView(ctx context.Context, state domain.ConnectivityState, live []domain.Ticket) []domain.Ticket {
	if state == domain.StateConnected {
		return live
	}
	return c.Read(ctx)
}
