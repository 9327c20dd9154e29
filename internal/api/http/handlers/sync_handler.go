package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/sync"
	apperrors "github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// SyncHandler exposes connectivity state, the effective ticket view, and the
// optimistic mutation operations to local UI fragments.
type SyncHandler struct {
	monitor *sync.Monitor
	applier *sync.Applier
}

// NewSyncHandler constructs handler.
func NewSyncHandler(monitor *sync.Monitor, applier *sync.Applier) *SyncHandler {
	return &SyncHandler{monitor: monitor, applier: applier}
}

// State GET /state.
func (h *SyncHandler) State(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.monitor.Snapshot()})
}

// Tickets GET /tickets. Serves the effective view: live while Connected,
// cached fallback otherwise.
func (h *SyncHandler) Tickets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.monitor.EffectiveTickets(c.UserContext())})
}

// Retry POST /retry. User-triggered poll with the longer timeout.
func (h *SyncHandler) Retry(c *fiber.Ctx) error {
	snap := h.monitor.ManualRetry(c.UserContext())
	return c.JSON(fiber.Map{"data": snap})
}

// ChangeStatus POST /tickets/:id/status.
func (h *SyncHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.applier.ApplyStatusChange(c.UserContext(), int64(id), domain.TicketStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "ok"})
}

// EditFields PATCH /tickets/:id.
func (h *SyncHandler) EditFields(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var diff map[string]string
	if err := c.BodyParser(&diff); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.applier.ApplyFieldEdit(c.UserContext(), int64(id), diff); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "ok"})
}

// Delete DELETE /tickets/:id.
func (h *SyncHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	if err := h.applier.ApplyDelete(c.UserContext(), int64(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "ok"})
}

// PendingEdits GET /edits.
func (h *SyncHandler) PendingEdits(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.applier.PendingEdits()})
}
