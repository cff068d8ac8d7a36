package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"khet-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_ReportsServiceName(t *testing.T) {
	rdb := newTestRedis(t)
	h := &Handlers{Rdb: rdb, DB: fakePinger{}, HealthAdminKey: "secret"}

	app := fiber.New()
	app.Get("/health/json", h.JSON)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "khet-api", body["service"])
	assert.Equal(t, "ok", body["status"])
}

func TestErrors_ReturnsLoggedEntries(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	entry, _ := json.Marshal(map[string]interface{}{"path": "/api/v1/farms/list", "status": 500})
	require.NoError(t, rdb.LPush(ctx, middleware.KeyErrorLog, entry).Err())
	h := &Handlers{Rdb: rdb, HealthAdminKey: "secret"}

	app := fiber.New()
	app.Get("/health/errors", h.Errors)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/errors", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var entries []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/farms/list", entries[0]["path"])
}

func TestReset_RequiresAdminKey(t *testing.T) {
	rdb := newTestRedis(t)
	h := &Handlers{Rdb: rdb, HealthAdminKey: "secret"}

	app := fiber.New()
	app.Post("/health/reset", h.Reset)

	resp, err := app.Test(httptest.NewRequest("POST", "/health/reset", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/health/reset?key=wrong", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestReset_ClearsCounters(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, "42", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqErrors, "7", 0).Err())
	h := &Handlers{Rdb: rdb, HealthAdminKey: "secret"}

	app := fiber.New()
	app.Post("/health/reset", h.Reset)

	resp, err := app.Test(httptest.NewRequest("POST", "/health/reset?key=secret", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, err = rdb.Get(ctx, middleware.KeyReqTotal).Result()
	assert.Error(t, err)
	startTime, err := rdb.Get(ctx, middleware.KeyStartTime).Result()
	require.NoError(t, err)
	assert.NotEmpty(t, startTime)
}
