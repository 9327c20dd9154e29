package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-sync/internal/taxonomy"
	apperrors "github.com/spec-kit/ticket-sync/pkg/util/errorutil"
)

// TaxonomyHandler exposes the classification tree operations.
type TaxonomyHandler struct {
	store *taxonomy.Store
}

// NewTaxonomyHandler constructs handler.
func NewTaxonomyHandler(store *taxonomy.Store) *TaxonomyHandler {
	return &TaxonomyHandler{store: store}
}

type nameRequest struct {
	Name string `json:"name"`
}

type renameRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// Tree GET /taxonomy.
func (h *TaxonomyHandler) Tree(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// AddType POST /taxonomy/types.
func (h *TaxonomyHandler) AddType(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.AddType(c.UserContext(), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// RenameType PUT /taxonomy/types.
func (h *TaxonomyHandler) RenameType(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.RenameType(c.UserContext(), req.OldName, req.NewName); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// DeleteType DELETE /taxonomy/types/:type. Cascades; callers confirm first.
func (h *TaxonomyHandler) DeleteType(c *fiber.Ctx) error {
	if err := h.store.DeleteType(c.UserContext(), c.Params("type")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// AddGroup POST /taxonomy/types/:type/groups.
func (h *TaxonomyHandler) AddGroup(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.AddGroup(c.UserContext(), c.Params("type"), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// RenameGroup PUT /taxonomy/types/:type/groups.
func (h *TaxonomyHandler) RenameGroup(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.RenameGroup(c.UserContext(), c.Params("type"), req.OldName, req.NewName); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// DeleteGroup DELETE /taxonomy/types/:type/groups/:group.
func (h *TaxonomyHandler) DeleteGroup(c *fiber.Ctx) error {
	if err := h.store.DeleteGroup(c.UserContext(), c.Params("type"), c.Params("group")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// AddSubgroup POST /taxonomy/types/:type/groups/:group/subgroups.
func (h *TaxonomyHandler) AddSubgroup(c *fiber.Ctx) error {
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.AddSubgroup(c.UserContext(), c.Params("type"), c.Params("group"), req.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}

// DeleteSubgroup DELETE /taxonomy/types/:type/groups/:group/subgroups/:subgroup.
func (h *TaxonomyHandler) DeleteSubgroup(c *fiber.Ctx) error {
	if err := h.store.DeleteSubgroup(c.UserContext(), c.Params("type"), c.Params("group"), c.Params("subgroup")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.store.Snapshot()})
}
