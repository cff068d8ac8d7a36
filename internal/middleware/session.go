package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionConfig for the Redis-backed session cookie.
type SessionConfig struct {
	Secret       string
	RedisURL     string
	IsProduction bool
}

const (
	SessionCookieName  = "khet.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour
)

// SessionUser is the shape stored in the session under "user".
type SessionUser struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	Language    string `json:"language"`
}

// Session returns a Fiber middleware that loads/saves the session from Redis,
// plus the Redis client for reuse (health marker, logout).
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)

	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		key := SessionRedisPrefix + sessionID

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(context.Background(), key).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals("user", u)
		} else {
			c.Locals("user", nil)
		}
		c.Locals("session_id", sessionID)

		err := c.Next()
		if err != nil {
			return err
		}

		// Persist if we have a session id (e.g. after login).
		if sid, _ := c.Locals("session_id").(string); sid != "" {
			updated, _ := c.Locals("session_data").(map[string]interface{})
			if updated != nil {
				b, _ := json.Marshal(updated)
				rdb.Set(context.Background(), SessionRedisPrefix+sid, b, sessionMaxAge)
			}
		}
		return nil
	}, rdb, nil
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}

// SetSessionUser stores the user in session data and marks it for save.
func SetSessionUser(c *fiber.Ctx, u SessionUser) {
	data, _ := c.Locals("session_data").(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	data["user"] = map[string]interface{}{
		"user_id":      u.UserID,
		"username":     u.Username,
		"fullname":     u.Fullname,
		"email":        u.Email,
		"is_superuser": u.IsSuperuser,
		"language":     u.Language,
	}
	c.Locals("session_data", data)
	c.Locals("user", data["user"])
}

// RegenerateSessionID assigns a fresh session id and sets the cookie. Call on
// login before storing the user.
func RegenerateSessionID(c *fiber.Ctx, cfg SessionConfig) string {
	sid := uuid.New().String()
	c.Locals("session_id", sid)
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    sid,
		HTTPOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: "Lax",
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	return sid
}

// ClearSession drops the session cookie and empties the session data.
func ClearSession(c *fiber.Ctx) {
	c.Locals("session_data", map[string]interface{}{})
	c.Locals("user", nil)
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HTTPOnly: true,
		MaxAge:   -1,
	})
}
