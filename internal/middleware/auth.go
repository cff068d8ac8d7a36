package middleware

import (
	"khet-backend/internal/models"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with the standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Principal(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// RequireSuperuser gates user administration and the global crop type catalog.
func RequireSuperuser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := Principal(c)
		if p == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !p.IsSuperuser {
			return response.Error(c, "User is Forbidden from performing this action", fiber.StatusForbidden, nil)
		}
		return c.Next()
	}
}

// GetUser returns the raw session user map (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// Principal rebuilds the requesting user from the session map. Only the
// fields the scoping and localisation layers need are carried; nil means not
// authenticated.
func Principal(c *fiber.Ctx) *models.User {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return nil
	}
	idStr, _ := m["user_id"].(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil
	}
	isSuper, _ := m["is_superuser"].(bool)
	lang, _ := m["language"].(string)
	if lang == "" {
		lang = models.LanguageEnglish
	}
	username, _ := m["username"].(string)
	fullname, _ := m["fullname"].(string)
	email, _ := m["email"].(string)
	return &models.User{
		UserID:      id,
		Username:    username,
		Fullname:    fullname,
		Email:       email,
		IsSuperuser: isSuper,
		Language:    lang,
	}
}
