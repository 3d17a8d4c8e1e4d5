package health

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"folio-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. If nil, the database is reported
// as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the /health/json payload.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Goroutines    int    `json:"goroutines"`
	HeapUsed      uint64 `json:"heapUsed"`
	GoVersion     string `json:"goVersion"`
}

type TrafficInfo struct {
	TotalRequests   int    `json:"totalRequests"`
	SuccessCount    int    `json:"successCount"`
	FailedCount     int    `json:"failedCount"`
	SuccessRate     string `json:"successRate"`
	AvgResponseTime string `json:"avgResponseTime"`
}

type DepStatus struct {
	Status string `json:"status"`
	PingMs *int64 `json:"pingMs"`
}

// Collect gathers dependency status and traffic counters. Works with either
// or both of redis and the database missing.
func Collect(ctx context.Context, rdb *redis.Client, db DBPinger) CollectResult {
	result := CollectResult{
		Dependencies: make(map[string]DepStatus),
		Traffic:      TrafficInfo{SuccessRate: "100", AvgResponseTime: "0"},
	}

	dbStatus := "disconnected"
	var dbPing *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPing = &ms
			dbStatus = "connected"
		} else {
			dbStatus = "error"
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPing}

	redisStatus := "disconnected"
	var redisPing *int64
	startMs := time.Now().UnixMilli()
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPing = &ms
			redisStatus = "connected"

			total := intKey(ctx, rdb, middleware.KeyReqTotal)
			errs := intKey(ctx, rdb, middleware.KeyReqErrors)
			timeTotal := floatKey(ctx, rdb, middleware.KeyResTime)
			resCount := intKey(ctx, rdb, middleware.KeyResCount)
			if s, err := rdb.Get(ctx, middleware.KeyStartTime).Result(); err == nil {
				if v, err := strconv.ParseInt(s, 10, 64); err == nil {
					startMs = v
				}
			}

			result.Traffic.TotalRequests = total
			result.Traffic.FailedCount = errs
			result.Traffic.SuccessCount = total - errs
			if total > 0 {
				result.Traffic.SuccessRate = fmt.Sprintf("%.1f", float64(total-errs)/float64(total)*100)
			}
			if resCount > 0 {
				result.Traffic.AvgResponseTime = fmt.Sprintf("%.2f", timeTotal/float64(resCount))
			}
		} else {
			redisStatus = "error"
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPing}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	result.Runtime = RuntimeInfo{
		UptimeSeconds: (time.Now().UnixMilli() - startMs) / 1000,
		Goroutines:    runtime.NumGoroutine(),
		HeapUsed:      mem.HeapAlloc,
		GoVersion:     runtime.Version(),
	}

	if dbStatus == "connected" && redisStatus == "connected" {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

// Reset clears the traffic counters and the refresh failure log.
func Reset(ctx context.Context, rdb *redis.Client) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
		keyRefreshFailures,
	).Err()
}

func intKey(ctx context.Context, rdb *redis.Client, key string) int {
	s, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

func floatKey(ctx context.Context, rdb *redis.Client, key string) float64 {
	s, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return 0
	}
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
