package health

import (
	"context"
	"errors"
	"testing"

	"khet-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping() error { return p.err }

func newTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestCollect_AllConnected(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqTotal, "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyReqErrors, "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyResTime, "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, middleware.KeyResCount, "10", 0).Err())

	report := Collect(ctx, rdb, fakePinger{})

	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "connected", report.Dependencies["database"].Status)
	assert.Equal(t, "connected", report.Dependencies["redis"].Status)
	assert.Equal(t, 10, report.Traffic.TotalRequests)
	assert.Equal(t, 8, report.Traffic.SuccessCount)
	assert.Equal(t, 2, report.Traffic.FailedCount)
	assert.Equal(t, "80.0", report.Traffic.SuccessRate)
	assert.Equal(t, "15.05", report.Traffic.AvgResponseTime)
}

func TestCollect_NoRedis(t *testing.T) {
	report := Collect(context.Background(), nil, fakePinger{})

	assert.Equal(t, "issue", report.Status)
	assert.Equal(t, "disconnected", report.Dependencies["redis"].Status)
	assert.Equal(t, "100", report.Traffic.SuccessRate)
	assert.Zero(t, report.Traffic.TotalRequests)
}

func TestCollect_DatabaseError(t *testing.T) {
	rdb := newTestRedis(t)

	report := Collect(context.Background(), rdb, fakePinger{err: errors.New("connection refused")})

	assert.Equal(t, "issue", report.Status)
	assert.Equal(t, "error", report.Dependencies["database"].Status)
	assert.Equal(t, "connected", report.Dependencies["redis"].Status)
}

func TestCollect_NilDatabase(t *testing.T) {
	rdb := newTestRedis(t)

	report := Collect(context.Background(), rdb, nil)

	assert.Equal(t, "issue", report.Status)
	assert.Equal(t, "disconnected", report.Dependencies["database"].Status)
}

func TestCollect_SetsStartTimeWhenMissing(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()

	report := Collect(ctx, rdb, fakePinger{})

	assert.GreaterOrEqual(t, report.Runtime.UptimeSeconds, int64(0))
	stored, err := rdb.Get(ctx, middleware.KeyStartTime).Result()
	require.NoError(t, err)
	assert.NotEmpty(t, stored)
}
