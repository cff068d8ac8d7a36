package ledgers

import (
	"fmt"

	"khet-backend/internal/metrics"
	"khet-backend/internal/middleware"
	"khet-backend/internal/models"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// ledgerListItem decorates a metrics row with deep links to the exact entry
// sets each total was summed from.
type ledgerListItem struct {
	metrics.LedgerRow
	DebitEntriesURL  string `json:"debit_entries_url"`
	CreditEntriesURL string `json:"credit_entries_url"`
}

func decorate(row metrics.LedgerRow) ledgerListItem {
	return ledgerListItem{
		LedgerRow:        row,
		DebitEntriesURL:  fmt.Sprintf("/api/v1/ledger-entries/list?ledger_id=%s&entry_type=%s", row.LedgerID, models.EntryDebit),
		CreditEntriesURL: fmt.Sprintf("/api/v1/ledger-entries/list?ledger_id=%s&entry_type=%s", row.LedgerID, models.EntryCredit),
	}
}

// CreateLedger POST /api/v1/ledgers/create-ledger
func (h *Handlers) CreateLedger(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req LedgerInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ledger, err := h.Service.CreateLedger(c.Context(), principal, req)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.SuccessCreated(c, "Ledger created successfully", ledger, nil)
}

// ListLedgers GET /api/v1/ledgers/list?balance=&farm_id=&is_active=
func (h *Handlers) ListLedgers(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	filter := ListFilter{Balance: c.Query("balance")}
	if v := c.Query("farm_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid farm ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		filter.FarmID = &id
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}
	rows, err := h.Service.ListLedgers(c.Context(), principal, filter)
	if err != nil {
		return ledgerError(c, err)
	}
	items := make([]ledgerListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, decorate(row))
	}
	return response.Success(c, "Ledgers fetched successfully", items, nil)
}

// GetLedger GET /api/v1/ledgers/get-ledger/:ledger_id
func (h *Handlers) GetLedger(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	ledgerID, err := uuid.Parse(c.Params("ledger_id"))
	if err != nil {
		return response.Error(c, "Invalid ledger ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	row, err := h.Service.GetLedger(c.Context(), principal, ledgerID)
	if err != nil {
		return ledgerError(c, err)
	}
	item := decorate(*row)
	return response.Success(c, "Ledger fetched successfully", item, nil)
}

// UpdateLedger PATCH /api/v1/ledgers/update-ledger/:ledger_id
func (h *Handlers) UpdateLedger(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	ledgerID, err := uuid.Parse(c.Params("ledger_id"))
	if err != nil {
		return response.Error(c, "Invalid ledger ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req LedgerInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ledger, err := h.Service.UpdateLedger(c.Context(), principal, ledgerID, req)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Ledger updated successfully", ledger, nil)
}

// DeleteLedger DELETE /api/v1/ledgers/delete-ledger/:ledger_id
func (h *Handlers) DeleteLedger(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	ledgerID, err := uuid.Parse(c.Params("ledger_id"))
	if err != nil {
		return response.Error(c, "Invalid ledger ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteLedger(c.Context(), principal, ledgerID); err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Ledger deleted successfully", fiber.Map{}, nil)
}

// Choices GET /api/v1/ledgers/choices
func (h *Handlers) Choices(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	choices, err := h.Service.Choices(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Ledger choices fetched successfully", choices, nil)
}

// CreateEntry POST /api/v1/ledger-entries/create-entry
func (h *Handlers) CreateEntry(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req EntryInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	entry, err := h.Service.CreateEntry(c.Context(), principal, req)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.SuccessCreated(c, "Ledger entry created successfully", entry, nil)
}

// ListEntries GET /api/v1/ledger-entries/list?ledger_id=&entry_type=
func (h *Handlers) ListEntries(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	filter := EntryFilter{EntryType: c.Query("entry_type")}
	if v := c.Query("ledger_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid ledger ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		filter.LedgerID = &id
	}
	entries, err := h.Service.ListEntries(c.Context(), principal, filter)
	if err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Ledger entries fetched successfully", entries, nil)
}

// DeleteEntry DELETE /api/v1/ledger-entries/delete-entry/:entry_id
func (h *Handlers) DeleteEntry(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	entryID, err := uuid.Parse(c.Params("entry_id"))
	if err != nil {
		return response.Error(c, "Invalid entry ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteEntry(c.Context(), principal, entryID); err != nil {
		return ledgerError(c, err)
	}
	return response.Success(c, "Ledger entry deleted successfully", fiber.Map{}, nil)
}

func ledgerError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrLedgerNotFound, ErrEntryNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ErrNameRequired, ErrContactInvalid, ErrEntryTypeBad, ErrAmountTooSmall, ErrInvalidFilter:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrScopeViolation:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "ledger_id"})
	case ErrHasDependents:
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
