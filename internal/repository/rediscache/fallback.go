package rediscache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Abanoub-Magdy-gabra/style-checkout/internal/domain"
)

// fallbackKey is the fixed namespace under which fallback order records live.
const fallbackKey = "orders:fallback"

// FallbackCache implements repository.FallbackCache on a Redis list. Newest
// records sit at the head; the list is trimmed to maxRecords after every
// prepend so the cache cannot grow without bound.
type FallbackCache struct {
	client     *redis.Client
	maxRecords int64
}

// NewFallbackCache creates a Redis-backed fallback cache retaining at most
// maxRecords entries.
func NewFallbackCache(client *redis.Client, maxRecords int64) *FallbackCache {
	if maxRecords <= 0 {
		maxRecords = 100
	}
	return &FallbackCache{
		client:     client,
		maxRecords: maxRecords,
	}
}

// Prepend pushes the record to the front of the fallback list and trims the
// list to the retention cap.
func (c *FallbackCache) Prepend(ctx context.Context, record domain.FallbackRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal fallback record: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, fallbackKey, data)
	pipe.LTrim(ctx, fallbackKey, 0, c.maxRecords-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis prepend fallback record: %w", err)
	}

	return nil
}

// Recent returns up to limit of the newest fallback records, newest first.
// Used by health tooling and tests; the finalization path never reads back.
func (c *FallbackCache) Recent(ctx context.Context, limit int64) ([]domain.FallbackRecord, error) {
	if limit <= 0 || limit > c.maxRecords {
		limit = c.maxRecords
	}

	raw, err := c.client.LRange(ctx, fallbackKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read fallback records: %w", err)
	}

	records := make([]domain.FallbackRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.FallbackRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal fallback record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}
