package sync

import (
	"context"
	"sort"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/observability"
	"github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// MutationClient is the slice of the backend client the applier needs.
type MutationClient interface {
	UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error
	UpdateFields(ctx context.Context, ticketID int64, diff map[string]string) (bool, error)
	Delete(ctx context.Context, ticketID int64) error
}

// Applier makes local edits visible immediately and reconciles them against
// the server response. Every optimistic mutation carries a rollback that is
// applied uniformly when the server rejects the change; deletes stay
// pessimistic and only take effect after confirmation.
type Applier struct {
	client  MutationClient
	monitor *Monitor
	metrics *observability.Metrics
	logger  *zap.Logger

	mu    stdsync.Mutex
	edits map[string]*domain.PendingEdit
}

// NewApplier constructs the applier.
func NewApplier(client MutationClient, monitor *Monitor, metrics *observability.Metrics, logger *zap.Logger) *Applier {
	return &Applier{
		client:  client,
		monitor: monitor,
		metrics: metrics,
		logger:  logger,
		edits:   make(map[string]*domain.PendingEdit),
	}
}

// ApplyStatusChange rewrites the ticket's status in memory, then submits the
// change. On rejection the prior status is restored.
func (a *Applier) ApplyStatusChange(ctx context.Context, ticketID int64, newStatus domain.TicketStatus) error {
	normalized := domain.NormalizeStatus(string(newStatus))
	if !normalized.IsValid() {
		return errorutil.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}

	prev, ok := a.monitor.UpdateTicket(ticketID, func(t *domain.Ticket) {
		t.Status = normalized
	})
	if !ok {
		return errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}

	edit := a.track(ticketID, map[string]string{"status": string(normalized)})

	if err := a.client.UpdateStatus(ctx, ticketID, normalized); err != nil {
		a.resolve(edit.ID, domain.EditStatusFailed)
		a.monitor.RestoreTicket(prev)
		a.metrics.RecordMutation("status", false)
		a.logger.Warn("status change rejected, rolled back",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
		return err
	}

	a.resolve(edit.ID, domain.EditStatusConfirmed)
	a.metrics.RecordMutation("status", true)
	return nil
}

// ApplyFieldEdit applies a field-level diff in memory, then submits it. A
// server response signalling a cancellation-triggered delete removes the
// ticket instead; rejection restores the pre-edit ticket.
func (a *Applier) ApplyFieldEdit(ctx context.Context, ticketID int64, diff map[string]string) error {
	if len(diff) == 0 {
		return errorutil.NewValidationError("empty diff", nil)
	}

	prev, ok := a.monitor.UpdateTicket(ticketID, func(t *domain.Ticket) {
		applyDiff(t, diff)
	})
	if !ok {
		return errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}

	edit := a.track(ticketID, diff)

	deleted, err := a.client.UpdateFields(ctx, ticketID, diff)
	if err != nil {
		a.resolve(edit.ID, domain.EditStatusFailed)
		a.monitor.RestoreTicket(prev)
		a.metrics.RecordMutation("edit", false)
		a.logger.Warn("field edit rejected, rolled back",
			zap.Int64("ticket_id", ticketID), zap.Error(err))
		return err
	}

	if deleted {
		a.monitor.RemoveTicket(ticketID)
		a.logger.Info("server deleted ticket on edit", zap.Int64("ticket_id", ticketID))
	}
	a.resolve(edit.ID, domain.EditStatusConfirmed)
	a.metrics.RecordMutation("edit", true)
	return nil
}

// ApplyDelete removes the ticket only after the server confirms. On failure
// the collection is untouched and the server's message is returned for
// display.
func (a *Applier) ApplyDelete(ctx context.Context, ticketID int64) error {
	if _, ok := a.monitor.Ticket(ticketID); !ok {
		return errorutil.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}

	if err := a.client.Delete(ctx, ticketID); err != nil {
		a.metrics.RecordMutation("delete", false)
		a.logger.Warn("delete rejected", zap.Int64("ticket_id", ticketID), zap.Error(err))
		return err
	}

	a.monitor.RemoveTicket(ticketID)
	a.metrics.RecordMutation("delete", true)
	return nil
}

// PendingEdits returns a snapshot of the edit ledger, oldest first.
func (a *Applier) PendingEdits() []domain.PendingEdit {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.PendingEdit, 0, len(a.edits))
	for _, edit := range a.edits {
		out = append(out, *edit)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out
}

func (a *Applier) track(ticketID int64, diff map[string]string) *domain.PendingEdit {
	edit := &domain.PendingEdit{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		Diff:        diff,
		SubmittedAt: time.Now().UTC(),
		Status:      domain.EditStatusPending,
	}
	a.mu.Lock()
	a.edits[edit.ID] = edit
	a.mu.Unlock()
	return edit
}

func (a *Applier) resolve(editID string, status domain.EditStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if edit, ok := a.edits[editID]; ok {
		edit.Status = status
	}
}

func applyDiff(t *domain.Ticket, diff map[string]string) {
	for field, value := range diff {
		switch field {
		case "status":
			t.Status = domain.NormalizeStatus(value)
		case "name":
			t.RequesterName = value
		case "email":
			t.RequesterEmail = value
		case "phone":
			t.RequesterPhone = value
		case "request":
			t.Request = value
		case "report":
			t.Report = value
		case "type":
			t.Type = value
		}
	}
}
