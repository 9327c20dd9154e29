package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-sync/internal/domain"
)

// Client talks to the remote helpdesk API. Timeouts are caller-chosen via
// context so the poll loop and manual retry can use different deadlines on
// the same client.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger,
	}
}

// FetchTickets retrieves the full ticket collection. Failures are returned
// as *domain.SyncError carrying the NETWORK/SERVER classification.
func (c *Client) FetchTickets(ctx context.Context) ([]domain.Ticket, error) {
	body, syncErr := c.get(ctx, "/api/tickets")
	if syncErr != nil {
		return nil, syncErr
	}

	tickets, err := decodeTicketCollection(body)
	if err != nil {
		// A 2xx with an undecodable body is treated like no response at all.
		return nil, &domain.SyncError{
			Classification: domain.ErrClassNetwork,
			Message:        "malformed response from server",
			Detail:         err.Error(),
		}
	}
	return domain.NormalizeTickets(tickets), nil
}

// decodeTicketCollection accepts the collection as a bare JSON array, the
// endpoint's canonical shape, or wrapped in a {"data": [...]} envelope as
// some deployments serve it.
func decodeTicketCollection(body []byte) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := json.Unmarshal(body, &tickets); err == nil {
		return tickets, nil
	}

	var envelope struct {
		Data []domain.Ticket `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// Health probes the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, syncErr := c.get(ctx, "/health/live")
	if syncErr != nil {
		return syncErr
	}
	return nil
}

// UpdateStatus submits a status change for one ticket.
func (c *Client) UpdateStatus(ctx context.Context, ticketID int64, status domain.TicketStatus) error {
	payload := map[string]string{"status": string(status)}
	_, syncErr := c.send(ctx, http.MethodPost, fmt.Sprintf("/api/tickets/%d/status", ticketID), payload)
	if syncErr != nil {
		return syncErr
	}
	return nil
}

// UpdateFields submits a field-level diff for one ticket. The returned flag
// reports whether the server deleted the ticket as a side effect of the
// update (cancellation-as-delete).
func (c *Client) UpdateFields(ctx context.Context, ticketID int64, diff map[string]string) (bool, error) {
	body, syncErr := c.send(ctx, http.MethodPatch, fmt.Sprintf("/api/tickets/%d", ticketID), diff)
	if syncErr != nil {
		return false, syncErr
	}

	var envelope struct {
		Deleted bool `json:"deleted"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, nil
	}
	return envelope.Deleted, nil
}

// Delete removes one ticket.
func (c *Client) Delete(ctx context.Context, ticketID int64) error {
	_, syncErr := c.send(ctx, http.MethodDelete, fmt.Sprintf("/api/tickets/%d", ticketID), nil)
	if syncErr != nil {
		return syncErr
	}
	return nil
}

// SaveTaxonomy mirrors the taxonomy tree to the backend. The local store
// remains authoritative; callers log failures instead of surfacing them.
func (c *Client) SaveTaxonomy(ctx context.Context, tree domain.TaxonomyTree) error {
	_, syncErr := c.send(ctx, http.MethodPost, "/api/taxonomy", tree)
	if syncErr != nil {
		return syncErr
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, *domain.SyncError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, networkError(err)
	}
	return c.do(req)
}

func (c *Client) send(ctx context.Context, method, path string, payload any) ([]byte, *domain.SyncError) {
	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, networkError(err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, networkError(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, *domain.SyncError) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, classifyHTTPFailure(resp.StatusCode, body)
}

func networkError(err error) *domain.SyncError {
	return &domain.SyncError{
		Classification: domain.ErrClassNetwork,
		Message:        "unable to reach server",
		Detail:         err.Error(),
	}
}

// classifyHTTPFailure maps non-2xx responses onto the SERVER taxonomy:
// 500 uses the body's message when one exists, 404 means the endpoint is
// missing, anything else is labeled by its numeric status.
func classifyHTTPFailure(status int, body []byte) *domain.SyncError {
	switch status {
	case http.StatusInternalServerError:
		message := serverMessage(body)
		if message == "" {
			message = "database/server error"
		}
		return &domain.SyncError{
			Classification: domain.ErrClassServer,
			Message:        message,
			Detail:         "HTTP 500",
		}
	case http.StatusNotFound:
		return &domain.SyncError{
			Classification: domain.ErrClassServer,
			Message:        "endpoint not found",
			Detail:         "HTTP 404",
		}
	default:
		return &domain.SyncError{
			Classification: domain.ErrClassServer,
			Message:        strconv.Itoa(status),
			Detail:         "HTTP " + strconv.Itoa(status),
		}
	}
}

func serverMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return strings.TrimSpace(string(body))
	}
	if envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return envelope.Message
}
