package crops

import (
	"fmt"

	"khet-backend/internal/metrics"
	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// cropListItem decorates a metrics row with the localised crop type name and
// deep links to the child rows each aggregate was summed from.
type cropListItem struct {
	metrics.CropRow
	CropTypeName string `json:"crop_type_name"`
	ExpensesURL  string `json:"expenses_url"`
	OutputsURL   string `json:"outputs_url"`
}

func decorate(row metrics.CropRow, typeNames map[uuid.UUID]string) cropListItem {
	return cropListItem{
		CropRow:      row,
		CropTypeName: typeNames[row.CropTypeID],
		ExpensesURL:  fmt.Sprintf("/api/v1/expenses/list?crop_id=%s", row.CropID),
		OutputsURL:   fmt.Sprintf("/api/v1/outputs/list?crop_id=%s", row.CropID),
	}
}

// ListCrops GET /api/v1/crops/list?balance=&field_id=&crop_type_id=&season=
func (h *Handlers) ListCrops(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	filter := ListFilter{
		Balance: c.Query("balance"),
		Season:  c.Query("season"),
	}
	if v := c.Query("field_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid field ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		filter.FieldID = &id
	}
	if v := c.Query("crop_type_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return response.Error(c, "Invalid crop type ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
		}
		filter.CropTypeID = &id
	}
	rows, err := h.Service.ListCrops(c.Context(), principal, filter)
	if err != nil {
		return cropError(c, err)
	}
	typeNames, err := h.Service.CropTypeNames(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	items := make([]cropListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, decorate(row, typeNames))
	}
	return response.Success(c, "Crops fetched successfully", items, nil)
}

// GetCrop GET /api/v1/crops/get-crop/:crop_id
func (h *Handlers) GetCrop(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	cropID, err := uuid.Parse(c.Params("crop_id"))
	if err != nil {
		return response.Error(c, "Invalid crop ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	row, err := h.Service.GetCrop(c.Context(), principal, cropID)
	if err != nil {
		return cropError(c, err)
	}
	typeNames, err := h.Service.CropTypeNames(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	item := decorate(*row, typeNames)
	return response.Success(c, "Crop fetched successfully", item, nil)
}

// CreateCrop POST /api/v1/crops/create-crop
func (h *Handlers) CreateCrop(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req CropInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	crop, err := h.Service.CreateCrop(c.Context(), principal, req)
	if err != nil {
		return cropError(c, err)
	}
	return response.SuccessCreated(c, "Crop created successfully", crop, nil)
}

// UpdateCrop PATCH /api/v1/crops/update-crop/:crop_id
func (h *Handlers) UpdateCrop(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	cropID, err := uuid.Parse(c.Params("crop_id"))
	if err != nil {
		return response.Error(c, "Invalid crop ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req CropInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	crop, err := h.Service.UpdateCrop(c.Context(), principal, cropID, req)
	if err != nil {
		return cropError(c, err)
	}
	return response.Success(c, "Crop updated successfully", crop, nil)
}

// DeleteCrop DELETE /api/v1/crops/delete-crop/:crop_id
func (h *Handlers) DeleteCrop(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	cropID, err := uuid.Parse(c.Params("crop_id"))
	if err != nil {
		return response.Error(c, "Invalid crop ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteCrop(c.Context(), principal, cropID); err != nil {
		return cropError(c, err)
	}
	return response.Success(c, "Crop deleted successfully", fiber.Map{}, nil)
}

// Choices GET /api/v1/crops/choices
func (h *Handlers) Choices(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	choices, err := h.Service.Choices(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Crop choices fetched successfully", choices, nil)
}

// ListCropTypes GET /api/v1/crop-types/list — localised catalog, visible to all.
func (h *Handlers) ListCropTypes(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	types, err := h.Service.ListCropTypes(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Crop types fetched successfully", types, nil)
}

// CreateCropType POST /api/v1/crop-types/create — superuser only (route guard).
func (h *Handlers) CreateCropType(c *fiber.Ctx) error {
	var req CropTypeInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ct, err := h.Service.CreateCropType(c.Context(), req)
	if err != nil {
		return cropError(c, err)
	}
	return response.SuccessCreated(c, "Crop type created successfully", ct, nil)
}

// UpdateCropType PATCH /api/v1/crop-types/update/:crop_type_id — superuser only.
func (h *Handlers) UpdateCropType(c *fiber.Ctx) error {
	cropTypeID, err := uuid.Parse(c.Params("crop_type_id"))
	if err != nil {
		return response.Error(c, "Invalid crop type ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req CropTypeInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	ct, err := h.Service.UpdateCropType(c.Context(), cropTypeID, req)
	if err != nil {
		return cropError(c, err)
	}
	return response.Success(c, "Crop type updated successfully", ct, nil)
}

// DeleteCropType DELETE /api/v1/crop-types/delete/:crop_type_id — superuser only.
func (h *Handlers) DeleteCropType(c *fiber.Ctx) error {
	cropTypeID, err := uuid.Parse(c.Params("crop_type_id"))
	if err != nil {
		return response.Error(c, "Invalid crop type ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.DeleteCropType(c.Context(), cropTypeID); err != nil {
		return cropError(c, err)
	}
	return response.Success(c, "Crop type deleted successfully", fiber.Map{}, nil)
}

// TypeChoices GET /api/v1/crop-types/choices
func (h *Handlers) TypeChoices(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	choices, err := h.Service.TypeChoices(c.Context(), principal)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Crop type choices fetched successfully", choices, nil)
}

func cropError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrCropNotFound, ErrCropTypeNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ErrCropTypeNameEmpty, ErrBreedRequired, ErrSeasonInvalid, ErrAcresInvalid, ErrInvalidFilter:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrScopeViolation:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, fiber.Map{"field": "field_id"})
	case ErrHasDependents, ErrTypeHasDependents:
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
