package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-sync/internal/stats"
	"github.com/spec-kit/ticket-sync/internal/sync"
	apperrors "github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// StatsHandler serves the aggregations behind the dashboard charts, computed
// over the effective ticket view so they degrade to cached data offline.
type StatsHandler struct {
	monitor      *sync.Monitor
	overdueAfter time.Duration
}

// NewStatsHandler constructs handler.
func NewStatsHandler(monitor *sync.Monitor, overdueAfter time.Duration) *StatsHandler {
	return &StatsHandler{monitor: monitor, overdueAfter: overdueAfter}
}

// Basic GET /stats/basic.
func (h *StatsHandler) Basic(c *fiber.Ctx) error {
	tickets := h.monitor.EffectiveTickets(c.UserContext())
	return c.JSON(fiber.Map{"data": fiber.Map{
		"by_status": stats.BasicStats(tickets),
		"by_type":   stats.CountByType(tickets),
	}})
}

// Daily GET /stats/daily?day=2024-03-10. Defaults to today.
func (h *StatsHandler) Daily(c *fiber.Ctx) error {
	day := time.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return apperrors.NewValidationError("invalid day, want YYYY-MM-DD", nil)
		}
		day = parsed
	}
	tickets := h.monitor.EffectiveTickets(c.UserContext())
	return c.JSON(fiber.Map{"data": stats.DailySummary(tickets, day)})
}

// Overdue GET /stats/overdue.
func (h *StatsHandler) Overdue(c *fiber.Ctx) error {
	tickets := h.monitor.EffectiveTickets(c.UserContext())
	overdue := stats.Overdue(tickets, time.Now().UTC(), h.overdueAfter)
	return c.JSON(fiber.Map{"data": overdue})
}
