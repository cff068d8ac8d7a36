package fields

import (
	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateField POST /api/v1/fields/create-field
func (h *Handlers) CreateField(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req FieldInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	field, err := h.Service.CreateField(c.Context(), principal, req)
	if err != nil {
		return fieldError(c, err)
	}
	return response.SuccessCreated(c, "Field created successfully", field, nil)
}

// ListFields GET /api/v1/fields/list?farm_id=&is_active=
func (h *Handlers) ListFields(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var filter ListFilter
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
	fields, err := h.Service.ListFields(c.Context(), principal, filter)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Fields fetched successfully", fields, nil)
}

// GetField GET /api/v1/fields/get-field/:field_id
func (h *Handlers) GetField(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	fieldID, err := uuid.Parse(c.Params("field_id"))
	if err != nil {
		return response.Error(c, "Invalid field ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	field, err := h.Service.GetField(c.Context(), principal, fieldID)
	if err != nil {
		return fieldError(c, err)
	}
	return response.Success(c, "Field fetched successfully", field, nil)
}

// UpdateField PATCH /api/v1/fields/update-field/:field_id
func (h *Handlers) UpdateField(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	fieldID, err := uuid.Parse(c.Params("field_id"))
	if err != nil {
		return response.Error(c, "Invalid field ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req FieldInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	field, err := h.Service.UpdateField(c.Context(), principal, fieldID, req)
	if err != nil {
		return fieldError(c, err)
	}
	return response.Success(c, "Field updated successfully", field, nil)
}

// DeleteField DELETE /api/v1/fields/delete-field/:field_id
func (h *Handlers) DeleteField(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	fieldID, err := uuid.Parse(c.Params("field_id"))
	if err != nil {
		return response.Error(c, "Invalid field ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteField(c.Context(), principal, fieldID); err != nil {
		return fieldError(c, err)
	}
	return response.Success(c, "Field deleted successfully", fiber.Map{}, nil)
}

// Choices GET /api/v1/fields/choices
func (h *Handlers) Choices(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	choices, err := h.Service.Choices(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Field choices fetched successfully", choices, nil)
}

func fieldError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrFieldNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ErrNameRequired, ErrAcresInvalid, ErrLandlordInvalid:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrScopeViolation:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "farm_id"})
	case ErrHasDependents:
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
