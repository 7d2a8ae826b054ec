package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"classpulse/internal/model"
)

// SummaryCache holds recently computed session summaries. Entries are
// short-lived and invalidated on every append, so a hit is always current.
type SummaryCache interface {
	Get(ctx context.Context, sessionID string) (*model.SessionSummary, error)
	Set(ctx context.Context, summary *model.SessionSummary) error
	Invalidate(ctx context.Context, sessionID string) error
}

type summaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache(client *redis.Client) SummaryCache {
	return &summaryCache{
		client: client,
		ttl:    30 * time.Second,
	}
}

func (c *summaryCache) key(sessionID string) string {
	return fmt.Sprintf("session:%s:summary", sessionID)
}

func (c *summaryCache) Get(ctx context.Context, sessionID string) (*model.SessionSummary, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var summary model.SessionSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *summaryCache) Set(ctx context.Context, summary *model.SessionSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(summary.Session.ID), data, c.ttl).Err()
}

func (c *summaryCache) Invalidate(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, c.key(sessionID)).Err()
}
