package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"khet-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. A nil pinger reports the
// database as disconnected.
type DBPinger interface {
	Ping() error
}

// Report is the payload served by /health/json.
type Report struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	RSS      int `json:"rss"`
	HeapUsed int `json:"heapUsed"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// Collect pings the database and Redis, and folds in the request stats the
// HealthMarker middleware accumulates.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger) Report {
	report := Report{Dependencies: make(map[string]DepStatus)}

	dbStatus := "disconnected"
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	report.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := "disconnected"
	var redisPingMs *int64
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()

	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = "connected"

			totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
			totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
			totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
			resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()
			startTimeStr, _ := rdb.Get(ctx, middleware.KeyStartTime).Result()
			lastReqStr, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

			if startTimeStr != "" {
				if t, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
					startTimeMs = t
				}
			} else {
				rdb.Set(ctx, middleware.KeyStartTime, startTimeMs, 0)
			}

			stats.TotalRequests, _ = strconv.Atoi(totalReq)
			stats.FailedCount, _ = strconv.Atoi(totalErr)
			stats.SuccessCount = stats.TotalRequests - stats.FailedCount
			if stats.TotalRequests > 0 {
				stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
			}
			timeSum, _ := strconv.ParseFloat(totalTime, 64)
			countSum, _ := strconv.Atoi(resCount)
			if countSum > 0 {
				stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
			}
			if lastReqStr != "" {
				var lastReq map[string]interface{}
				_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
				stats.LastRequest = lastReq
			}
		} else {
			redisStatus = "error"
		}
	}
	report.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptimeSec := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptimeSec < 0 {
		uptimeSec = 0
	}
	report.Runtime = RuntimeInfo{
		UptimeSeconds: uptimeSec,
		Memory:        MemoryInfo{RSS: int(m.Alloc / 1024 / 1024), HeapUsed: int(m.HeapInuse / 1024 / 1024)},
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}
	report.Traffic = stats

	if dbStatus == "connected" && redisStatus == "connected" {
		report.Status = "ok"
	} else {
		report.Status = "issue"
	}
	return report
}
