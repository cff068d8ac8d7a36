package outputs

import (
	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateOutput POST /api/v1/outputs/create-output
func (h *Handlers) CreateOutput(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req OutputInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	output, err := h.Service.CreateOutput(c.Context(), principal, req)
	if err != nil {
		return outputError(c, err)
	}
	return response.SuccessCreated(c, "Output created successfully", output, nil)
}

// ListOutputs GET /api/v1/outputs/list?crop_id=
func (h *Handlers) ListOutputs(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var cropID *uuid.UUID
	if v := c.Query("crop_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid crop ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		cropID = &id
	}
	outputs, err := h.Service.ListOutputs(c.Context(), principal, cropID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Outputs fetched successfully", outputs, nil)
}

// DeleteOutput DELETE /api/v1/outputs/delete-output/:output_id
func (h *Handlers) DeleteOutput(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	outputID, err := uuid.Parse(c.Params("output_id"))
	if err != nil {
		return response.Error(c, "Invalid output ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteOutput(c.Context(), principal, outputID); err != nil {
		return outputError(c, err)
	}
	return response.Success(c, "Output deleted successfully", fiber.Map{}, nil)
}

func outputError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrOutputNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ErrMannInvalid, ErrRateInvalid:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrScopeViolation:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "crop_id"})
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
