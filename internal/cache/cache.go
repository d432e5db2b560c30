// Package cache holds a small redis-backed cache for shared aggregate
// views. It is optional: a nil *ViewCache is valid and every method
// degrades to a miss, so the rest of the service never branches on
// whether redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/stats"
)

const sharedViewTTL = 60 * time.Second

type ViewCache struct {
	client *redis.Client
	logger internal.Logger
}

func NewViewCache(addr string, logger internal.Logger) (*ViewCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ViewCache{client: client, logger: logger}, nil
}

func (c *ViewCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func sharedKey(code, referenceDay string) string {
	return "sharedview:" + code + ":" + referenceDay
}

// GetSharedView returns the cached view for a normalized code, or
// (nil, false) on any miss or redis failure. Cache trouble is logged
// and swallowed; the caller falls back to the store.
func (c *ViewCache) GetSharedView(ctx context.Context, code, referenceDay string) (*stats.SharedView, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, sharedKey(code, referenceDay)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnf("cache: shared view read failed: %v", err)
		}
		return nil, false
	}
	var view stats.SharedView
	if err := json.Unmarshal(raw, &view); err != nil {
		c.logger.Warnf("cache: shared view decode failed: %v", err)
		return nil, false
	}
	return &view, true
}

func (c *ViewCache) SetSharedView(ctx context.Context, code, referenceDay string, view *stats.SharedView) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, sharedKey(code, referenceDay), raw, sharedViewTTL).Err(); err != nil {
		c.logger.Warnf("cache: shared view write failed: %v", err)
	}
}
