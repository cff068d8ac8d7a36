package expenses

import (
	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateExpense POST /api/v1/expenses/create-expense
func (h *Handlers) CreateExpense(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req ExpenseInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	expense, err := h.Service.CreateExpense(c.Context(), principal, req)
	if err != nil {
		return expenseError(c, err)
	}
	return response.SuccessCreated(c, "Expense created successfully", expense, nil)
}

// ListExpenses GET /api/v1/expenses/list?crop_id=&expense_type=&spent_by=
func (h *Handlers) ListExpenses(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	filter := ListFilter{ExpenseType: c.Query("expense_type")}
	if v := c.Query("crop_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid crop ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		filter.CropID = &id
	}
	if v := c.Query("spent_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		filter.SpentByID = &id
	}
	expenses, err := h.Service.ListExpenses(c.Context(), principal, filter)
	if err != nil {
		return expenseError(c, err)
	}
	return response.Success(c, "Expenses fetched successfully", expenses, nil)
}

// UpdateExpense PATCH /api/v1/expenses/update-expense/:expense_id
func (h *Handlers) UpdateExpense(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	expenseID, err := uuid.Parse(c.Params("expense_id"))
	if err != nil {
		return response.Error(c, "Invalid expense ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req ExpenseInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	expense, err := h.Service.UpdateExpense(c.Context(), principal, expenseID, req)
	if err != nil {
		return expenseError(c, err)
	}
	return response.Success(c, "Expense updated successfully", expense, nil)
}

// DeleteExpense DELETE /api/v1/expenses/delete-expense/:expense_id
func (h *Handlers) DeleteExpense(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	expenseID, err := uuid.Parse(c.Params("expense_id"))
	if err != nil {
		return response.Error(c, "Invalid expense ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteExpense(c.Context(), principal, expenseID); err != nil {
		return expenseError(c, err)
	}
	return response.Success(c, "Expense deleted successfully", fiber.Map{}, nil)
}

func expenseError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrExpenseNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ErrTypeInvalid, ErrAmountInvalid, ErrSpentByRequired:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrScopeViolation:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "crop_id"})
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
