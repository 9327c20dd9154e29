// Package stub hosts an in-memory backend implementing the REST surface the
// sync core consumes, for local development and manual testing. It is not
// part of the production data path.
package stub

import (
	"context"
	"encoding/json"
	stdsync "sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
	"github.com/spec-kit/ticket-sync/internal/kv"
	apperrors "github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// FailureMode lets operators force error responses to exercise the client's
// classification paths.
type FailureMode string

const (
	FailureNone   FailureMode = "none"
	FailureServer FailureMode = "server"
)

// Server is the stub backend.
type Server struct {
	app    *fiber.App
	store  kv.Store
	logger *zap.Logger

	mu      stdsync.Mutex
	tickets map[int64]domain.Ticket
	nextID  int64
	failure FailureMode
}

// NewServer builds the fiber app with seeded tickets.
func NewServer(serviceName, version string, logger *zap.Logger) *Server {
	s := &Server{
		store:   kv.NewMemory(),
		logger:  logger,
		tickets: make(map[int64]domain.Ticket),
		nextID:  1,
		failure: FailureNone,
	}
	for _, t := range seedTickets() {
		s.tickets[t.TicketID] = t
		if t.TicketID >= s.nextID {
			s.nextID = t.TicketID + 1
		}
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	registerMiddlewares(app, logger)

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive", "service": serviceName, "version": version})
	})

	api := app.Group("/api", s.failureInjection)
	api.Get("/tickets", s.listTickets)
	api.Post("/tickets", s.createTicket)
	api.Post("/tickets/:id/status", s.updateStatus)
	api.Patch("/tickets/:id", s.updateFields)
	api.Delete("/tickets/:id", s.deleteTicket)
	api.Post("/taxonomy", s.saveTaxonomy)

	app.Post("/admin/failure", s.setFailureMode)

	s.app = app
	return s
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) failureInjection(c *fiber.Ctx) error {
	s.mu.Lock()
	mode := s.failure
	s.mu.Unlock()
	if mode == FailureServer {
		return apperrors.NewDomainError("SERVER", "database/server error", fiber.StatusInternalServerError, nil)
	}
	return c.Next()
}

func (s *Server) setFailureMode(c *fiber.Ctx) error {
	var req struct {
		Mode FailureMode `json:"mode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Mode != FailureNone && req.Mode != FailureServer {
		return apperrors.NewValidationError("unknown failure mode", map[string]any{"mode": string(req.Mode)})
	}
	s.mu.Lock()
	s.failure = req.Mode
	s.mu.Unlock()
	return c.JSON(fiber.Map{"data": string(req.Mode)})
}

func (s *Server) listTickets(c *fiber.Ctx) error {
	s.mu.Lock()
	items := make([]domain.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		items = append(items, t)
	}
	s.mu.Unlock()
	return c.JSON(fiber.Map{"data": items})
}

func (s *Server) createTicket(c *fiber.Ctx) error {
	var t domain.Ticket
	if err := c.BodyParser(&t); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	t = t.Normalize()
	if !t.Status.IsValid() {
		t.Status = domain.TicketStatusNew
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	t.TicketID = s.nextID
	s.nextID++
	s.tickets[t.TicketID] = t
	s.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": t})
}

func (s *Server) updateStatus(c *fiber.Ctx) error {
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
	status := domain.NormalizeStatus(req.Status)
	if !status.IsValid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	s.mu.Lock()
	t, ok := s.tickets[int64(id)]
	if !ok {
		s.mu.Unlock()
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	t.Status = status
	s.tickets[int64(id)] = t
	s.mu.Unlock()

	return c.JSON(fiber.Map{"data": t})
}

// updateFields applies a field diff. A diff that cancels the ticket deletes
// it instead and reports the deletion, which is the cancellation-as-delete
// path the client must handle.
func (s *Server) updateFields(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	var diff map[string]string
	if err := c.BodyParser(&diff); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(diff) == 0 {
		return apperrors.NewValidationError("empty diff", nil)
	}

	s.mu.Lock()
	t, ok := s.tickets[int64(id)]
	if !ok {
		s.mu.Unlock()
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}

	if raw, ok := diff["status"]; ok && domain.NormalizeStatus(raw) == domain.TicketStatusCancelled {
		delete(s.tickets, int64(id))
		s.mu.Unlock()
		return c.JSON(fiber.Map{"deleted": true})
	}

	applyTicketDiff(&t, diff)
	s.tickets[int64(id)] = t
	s.mu.Unlock()

	return c.JSON(fiber.Map{"data": t, "deleted": false})
}

func (s *Server) deleteTicket(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	s.mu.Lock()
	if _, ok := s.tickets[int64(id)]; !ok {
		s.mu.Unlock()
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	delete(s.tickets, int64(id))
	s.mu.Unlock()

	return c.JSON(fiber.Map{"data": "deleted"})
}

func (s *Server) saveTaxonomy(c *fiber.Ctx) error {
	var tree domain.TaxonomyTree
	if err := json.Unmarshal(c.Body(), &tree); err != nil {
		return apperrors.NewValidationError("invalid taxonomy payload", nil)
	}
	encoded, err := json.Marshal(tree)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.store.Set(context.Background(), kv.KeyTaxonomyTree, string(encoded)); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": "saved"})
}

func applyTicketDiff(t *domain.Ticket, diff map[string]string) {
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

func seedTickets() []domain.Ticket {
	created := time.Now().UTC().Add(-72 * time.Hour)
	appointment := time.Now().UTC().Add(24 * time.Hour)
	return []domain.Ticket{
		{
			TicketID:       101,
			RequesterName:  "Dana Whitfield",
			RequesterEmail: "dana@example.com",
			RequesterPhone: "555-0101",
			Request:        "Printer on floor 3 jams on every duplex job",
			Status:         domain.TicketStatusNew,
			Type:           "Incident",
			CreatedAt:      created,
		},
		{
			TicketID:       102,
			RequesterName:  "Piotr Novak",
			RequesterEmail: "piotr@example.com",
			RequesterPhone: "555-0102",
			Request:        "Needs access to the shared finance drive",
			Status:         domain.TicketStatusInProgress,
			Type:           "Service Request",
			CreatedAt:      created.Add(4 * time.Hour),
			AppointmentAt:  &appointment,
		},
		{
			TicketID:       103,
			RequesterName:  "Mei Tanaka",
			RequesterEmail: "mei@example.com",
			RequesterPhone: "555-0103",
			Request:        "Laptop replacement before travel",
			Report:         "Swapped battery, issue persists",
			Status:         domain.TicketStatus("Completed"),
			Type:           "Service Request",
			CreatedAt:      created.Add(8 * time.Hour),
		},
	}
}
