package farms

import (
	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handlers bundles farm and farm-asset handlers.
type Handlers struct {
	Service *Service
}

// CreateFarm POST /api/v1/farms/create-farm
func (h *Handlers) CreateFarm(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateFarmInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	farm, err := h.Service.CreateFarm(c.Context(), principal, req)
	if err != nil {
		switch err {
		case ErrNameRequired, ErrOwnerRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Farm created successfully", farm, nil)
}

// ListFarms GET /api/v1/farms/list
func (h *Handlers) ListFarms(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	farms, err := h.Service.ListFarms(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Farms fetched successfully", farms, nil)
}

// GetFarm GET /api/v1/farms/get-farm/:farm_id
func (h *Handlers) GetFarm(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid farm ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	farm, err := h.Service.GetFarm(c.Context(), principal, farmID)
	if err != nil {
		switch err {
		case ErrFarmNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Farm fetched successfully", farm, nil)
}

// UpdateFarm PATCH /api/v1/farms/update-farm/:farm_id
func (h *Handlers) UpdateFarm(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid farm ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req UpdateFarmInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	farm, err := h.Service.UpdateFarm(c.Context(), principal, farmID, req)
	if err != nil {
		switch err {
		case ErrFarmNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case ErrNameRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Farm updated successfully", farm, nil)
}

// DeleteFarm DELETE /api/v1/farms/delete-farm/:farm_id
func (h *Handlers) DeleteFarm(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid farm ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteFarm(c.Context(), principal, farmID); err != nil {
		switch err {
		case ErrFarmNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		case ErrHasDependents:
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Farm deleted successfully", fiber.Map{}, nil)
}

// Choices GET /api/v1/farms/choices
func (h *Handlers) Choices(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	choices, err := h.Service.Choices(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Farm choices fetched successfully", choices, nil)
}

// CreateAsset POST /api/v1/farms/create-asset
func (h *Handlers) CreateAsset(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CreateAssetInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	asset, err := h.Service.CreateAsset(c.Context(), principal, req)
	if err != nil {
		switch err {
		case ErrNameRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrScopeViolation:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "farm_id"})
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.SuccessCreated(c, "Farm asset created successfully", asset, nil)
}

// ListAssets GET /api/v1/farms/list-assets?farm_id=
func (h *Handlers) ListAssets(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var farmID *uuid.UUID
	if v := c.Query("farm_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid farm ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		farmID = &id
	}
	assets, err := h.Service.ListAssets(c.Context(), principal, farmID)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Farm assets fetched successfully", assets, nil)
}

// DeleteAsset DELETE /api/v1/farms/delete-asset/:asset_id
func (h *Handlers) DeleteAsset(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	assetID, err := uuid.Parse(c.Params("asset_id"))
	if err != nil {
		return response.Error(c, "Invalid asset ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteAsset(c.Context(), principal, assetID); err != nil {
		switch err {
		case ErrAssetNotFound:
			return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Farm asset deleted successfully", fiber.Map{}, nil)
}
