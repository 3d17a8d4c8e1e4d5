package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for the traffic counters the health module reads.
const (
	KeyReqTotal  = "folio:traffic:req_total"
	KeyReqErrors = "folio:traffic:req_errors"
	KeyResTime   = "folio:traffic:res_time_total"
	KeyResCount  = "folio:traffic:res_count"
	KeyStartTime = "folio:traffic:start_time"
	KeyLastReq   = "folio:traffic:last_request"
)

// TrafficMarker records request stats in Redis (skips /health* and favicon).
// A nil client disables it.
func TrafficMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil {
			return c.Next()
		}
		path := c.Path()
		if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		lastReq := map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		}
		b, _ := json.Marshal(lastReq)
		ctx := context.Background()
		_, _ = rdb.Set(ctx, KeyLastReq, b, 0).Result()
		_, _ = rdb.Incr(ctx, KeyReqTotal).Result()
		_, _ = rdb.SetNX(ctx, KeyStartTime, start.UnixMilli(), 0).Result()

		err := c.Next()

		ms := time.Since(start).Milliseconds()
		_, _ = rdb.Incr(ctx, KeyResCount).Result()
		_, _ = rdb.IncrByFloat(ctx, KeyResTime, float64(ms)).Result()
		if c.Response().StatusCode() >= 500 {
			_, _ = rdb.Incr(ctx, KeyReqErrors).Result()
		}
		return err
	}
}
