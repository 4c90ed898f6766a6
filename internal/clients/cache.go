package clients

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ougajs-sys/easyflows-backend/pkg/logger"
)

const (
	firstPageKey = "ef:clients:first_page"
	firstPageTTL = 5 * time.Minute
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ListCache keeps the unfiltered first page of the client list in redis.
// The importer invalidates it after writing new rows.
type ListCache struct {
	store cacheStore
	logg  *logger.Logger
}

func NewListCache(store cacheStore, logg *logger.Logger) *ListCache {
	if store == nil {
		return nil
	}
	return &ListCache{store: store, logg: logg}
}

// GetFirstPage returns the cached page, or false on a miss. Redis errors
// count as misses.
func (c *ListCache) GetFirstPage(ctx context.Context) (*ClientList, bool) {
	raw, err := c.store.Get(ctx, firstPageKey)
	if err != nil || raw == "" {
		return nil, false
	}
	var list ClientList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false
	}
	return &list, true
}

// SetFirstPage stores the page. Failures are logged, never surfaced.
func (c *ListCache) SetFirstPage(ctx context.Context, list *ClientList) {
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, firstPageKey, string(raw), firstPageTTL); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "clients: caching first page failed")
	}
}

// InvalidateClients drops the cached page after a bulk write.
func (c *ListCache) InvalidateClients(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.store.Del(ctx, firstPageKey); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "clients: cache invalidation failed")
	}
}
