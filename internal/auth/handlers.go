package auth

import (
	"context"

	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login — authenticate, regenerate session, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrCredentialsRequired.Error(), fiber.StatusBadRequest, nil)
	}
	user, err := h.UserFinder.FindByUsernameAndPassword(req.Username, req.Password)
	if err != nil {
		switch err {
		case ErrCredentialsRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidUsername, ErrIncorrectPassword, ErrInactiveUser:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c, h.Config)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:      user.UserID.String(),
		Username:    user.Username,
		Fullname:    user.Fullname,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
		Language:    user.Language,
	})

	if h.Rdb != nil {
		if err := h.Rdb.SAdd(context.Background(), userSessionsPrefix+user.UserID.String(), sessionID).Err(); err != nil {
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"user_id":      user.UserID.String(),
			"username":     user.Username,
			"fullname":     user.Fullname,
			"email":        user.Email,
			"is_superuser": user.IsSuperuser,
			"language":     user.Language,
		},
	}, nil)
}

// Me GET /api/v1/auth/me — return the current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout — drop the session from Redis and clear
// the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	if h.Rdb != nil && sessionID != "" {
		ctx := context.Background()
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
		_ = h.Rdb.SRem(ctx, userSessionsPrefix+user.UserID, sessionID).Err()
	}
	middleware.ClearSession(c)
	return response.Success(c, "Logged out", fiber.Map{}, nil)
}
