package health

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"khet-backend/internal/middleware"
	"khet-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb            *redis.Client
	DB             DBPinger
	HealthAdminKey string
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	report := Collect(context.Background(), h.Rdb, h.DB)
	return c.JSON(map[string]interface{}{
		"service":      "khet-api",
		"status":       report.Status,
		"runtime":      report.Runtime,
		"traffic":      report.Traffic,
		"dependencies": report.Dependencies,
	})
}

// Errors GET /health/errors — last 50 error log entries.
func (h *Handlers) Errors(c *fiber.Ctx) error {
	entries, err := h.Rdb.LRange(context.Background(), middleware.KeyErrorLog, 0, 49).Result()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON([]interface{}{})
	}
	out := make([]map[string]interface{}, 0, len(entries))
	for _, s := range entries {
		var m map[string]interface{}
		if _ = json.Unmarshal([]byte(s), &m); m != nil {
			out = append(out, m)
		}
	}
	return c.JSON(out)
}

// Reset POST /health/reset — clears the stat counters. Requires ?key= to
// match HEALTH_ADMIN_KEY.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	key := c.Query("key")
	if key == "" || key != h.HealthAdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := context.Background()
	keys := []string{
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
		middleware.KeyErrorLog,
	}
	if err := h.Rdb.Del(ctx, keys...).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	if err := h.Rdb.Set(ctx, middleware.KeyStartTime, strconv.FormatInt(time.Now().UnixMilli(), 10), 0).Err(); err != nil {
		return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stats reset successfully", fiber.Map{"success": true}, nil)
}
