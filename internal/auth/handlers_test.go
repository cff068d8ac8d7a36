package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"khet-backend/internal/middleware"
	"khet-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserFinder returns the configured user when username matches and the
// password is "password123".
type fakeUserFinder struct {
	user *models.User
}

func (f *fakeUserFinder) FindByUsernameAndPassword(username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if f.user == nil || f.user.Username != username {
		return nil, ErrInvalidUsername
	}
	if password != "password123" {
		return nil, ErrIncorrectPassword
	}
	if !f.user.IsActive {
		return nil, ErrInactiveUser
	}
	return f.user, nil
}

func setupAuthHandlers(t *testing.T, finder UserFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return &Handlers{
		UserFinder: finder,
		Rdb:        rdb,
		Config:     middleware.SessionConfig{IsProduction: false},
	}, rdb
}

func testUser() *models.User {
	return &models.User{
		UserID:   uuid.New(),
		Username: "kisan",
		Fullname: "Kisan Test",
		Email:    "kisan@test.com",
		IsActive: true,
		Language: models.LanguageEnglish,
	}
}

func TestLogin_EmptyBody(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := fiber.New()
	app.Post("/login", h.Login)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_UnknownUsername(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"username": "ghost", "password": "password123"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"username": "kisan", "password": "nope"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_Success(t *testing.T) {
	u := testUser()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: u})
	app := fiber.New()
	app.Post("/login", h.Login)

	body, _ := json.Marshal(map[string]string{"username": "kisan", "password": "password123"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result["status"])
	data := result["data"].(map[string]interface{})
	sessionUser := data["user"].(map[string]interface{})
	assert.Equal(t, "kisan", sessionUser["username"])

	// Session cookie set and SID recorded against the user.
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)

	sids, err := rdb.SMembers(context.Background(), userSessionsPrefix+u.UserID.String()).Result()
	require.NoError(t, err)
	assert.Len(t, sids, 1)
}

func TestMe_Unauthenticated(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Get("/me", h.Me)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_WithSessionUser(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id":  "00000000-0000-0000-0000-000000000001",
			"username": "kisan",
			"language": models.LanguageUrdu,
		})
		return c.Next()
	})
	app.Get("/me", h.Me)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	data := result["data"].(map[string]interface{})
	me := data["user"].(map[string]interface{})
	assert.Equal(t, "kisan", me["username"])
	assert.Equal(t, models.LanguageUrdu, me["language"])
}

func TestLogout_RemovesSession(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_id", "sid-1")
		c.Locals("user", map[string]interface{}{
			"user_id":  "00000000-0000-0000-0000-000000000001",
			"username": "kisan",
		})
		return c.Next()
	})
	app.Delete("/logout", h.Logout)

	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, middleware.SessionRedisPrefix+"sid-1", "{}", 0).Err())
	require.NoError(t, rdb.SAdd(ctx, userSessionsPrefix+"00000000-0000-0000-0000-000000000001", "sid-1").Err())

	req := httptest.NewRequest("DELETE", "/logout", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	exists, err := rdb.Exists(ctx, middleware.SessionRedisPrefix+"sid-1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
