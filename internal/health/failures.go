package health

import (
	"context"
	"encoding/json"
	"time"

	"folio-backend/internal/holdings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyRefreshFailures = "folio:refresh:failures"

// maxFailureEntries caps the redis failure log.
const maxFailureEntries = 200

// FailureEntry is one recorded refresh failure.
type FailureEntry struct {
	HoldingID string    `json:"holdingId"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// RedisFailureSink mirrors refresh failures into a capped redis list so they
// are inspectable after the fact, not just grep-able in logs.
type RedisFailureSink struct {
	Rdb *redis.Client
}

// RecordRefreshFailure implements holdings.FailureSink. Redis errors are
// swallowed: reporting must never fail a refresh.
func (s *RedisFailureSink) RecordRefreshFailure(ctx context.Context, f holdings.RefreshFailure) {
	if s.Rdb == nil {
		return
	}
	entry := FailureEntry{
		HoldingID: f.HoldingID.String(),
		Name:      f.Name,
		Reason:    f.Reason,
		At:        time.Now().UTC(),
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	pipe := s.Rdb.Pipeline()
	pipe.LPush(ctx, keyRefreshFailures, b)
	pipe.LTrim(ctx, keyRefreshFailures, 0, maxFailureEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to record refresh failure in redis")
	}
}

// RecentFailures returns the most recent refresh failures, newest first.
func RecentFailures(ctx context.Context, rdb *redis.Client, limit int) ([]FailureEntry, error) {
	if rdb == nil {
		return []FailureEntry{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	raw, err := rdb.LRange(ctx, keyRefreshFailures, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]FailureEntry, 0, len(raw))
	for _, r := range raw {
		var e FailureEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
