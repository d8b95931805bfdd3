package policy

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/resellhub/storefront/internal/logging"
)

const markerTTL = 30 * time.Minute

// MarkerCache remembers that a session recently passed the admin check so
// read navigation inside the admin surface can skip the account fetch. A nil
// cache disables the fast path entirely; cache errors behave as a miss.
type MarkerCache struct {
	client *redis.Client
}

func NewMarkerCache(client *redis.Client) *MarkerCache {
	return &MarkerCache{client: client}
}

func (m *MarkerCache) Set(ctx context.Context, userID string) {
	if m == nil || m.client == nil {
		return
	}
	if err := m.client.Set(ctx, markerKey(userID), "true", markerTTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("admin marker set failed", "error", err)
	}
}

func (m *MarkerCache) Has(ctx context.Context, userID string) bool {
	if m == nil || m.client == nil {
		return false
	}
	v, err := m.client.Get(ctx, markerKey(userID)).Result()
	return err == nil && v == "true"
}

func (m *MarkerCache) Clear(ctx context.Context, userID string) {
	if m == nil || m.client == nil {
		return
	}
	if err := m.client.Del(ctx, markerKey(userID)).Err(); err != nil {
		logging.FromContext(ctx).Warn("admin marker clear failed", "error", err)
	}
}

func markerKey(userID string) string {
	return "admin-auth:" + userID
}
