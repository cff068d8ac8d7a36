package users

import (
	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateUser POST /api/v1/users/create-user (superuser only, enforced on the route)
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.CreateUser(c.Context(), req)
	if err != nil {
		return userError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", u, nil)
}

// ViewUser GET /api/v1/users/view-user/:user_id
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.ViewUser(c.Context(), principal, userID)
	if err != nil {
		return userError(c, err)
	}
	return response.Success(c, "User found", u, nil)
}

// UpdateUser PUT /api/v1/users/update-user/:user_id
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	principal := middleware.Principal(c)
	if principal == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	var req UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	u, err := h.Service.UpdateUser(c.Context(), principal, userID, req)
	if err != nil {
		return userError(c, err)
	}
	return response.Success(c, "User updated successfully", u, nil)
}

// ListUsers GET /api/v1/users/list (superuser only, enforced on the route)
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.Service.ListUsers(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Users fetched successfully", users, nil)
}

// RemoveUser DELETE /api/v1/users/remove-user/:user_id (superuser only)
func (h *Handlers) RemoveUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.RemoveUser(c.Context(), userID); err != nil {
		return userError(c, err)
	}
	return response.Success(c, "User removed successfully", nil, nil)
}

func userError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrUserNotFound:
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case ErrUsernameRequired, ErrInvalidUsername, ErrInvalidEmail, ErrInvalidPassword, ErrInvalidLanguage:
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case ErrUsernameTaken, ErrEmailTaken:
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case ErrNotPermitted:
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case ErrHasDependents:
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
