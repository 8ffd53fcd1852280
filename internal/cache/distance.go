package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/kmtracker/kmtracker/internal/model"
)

const (
	distanceKeyPrefix = "distance:"

	// DefaultDistanceTTL is used when SetDistance is given a non-positive TTL.
	DefaultDistanceTTL = 7 * 24 * time.Hour
)

// GetDistance returns the cached distance for an address pair.
// Returns ErrCacheMiss if the pair has not been resolved.
func (c *Cache) GetDistance(ctx context.Context, origin, destination string) (*model.CachedDistance, error) {
	result, err := c.client.HGetAll(ctx, distanceKey(origin, destination)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 || result["km"] == "" {
		return nil, ErrCacheMiss
	}

	return &model.CachedDistance{
		Km:       result["km"],
		Duration: result["duration"],
	}, nil
}

// SetDistance stores a resolved distance for an address pair.
func (c *Cache) SetDistance(ctx context.Context, origin, destination string, d *model.CachedDistance, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultDistanceTTL
	}
	key := distanceKey(origin, destination)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"km":       d.Km,
		"duration": d.Duration,
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache distance: %w", err)
	}

	return nil
}

// DeleteDistance drops a cached pair.
func (c *Cache) DeleteDistance(ctx context.Context, origin, destination string) error {
	if err := c.client.Del(ctx, distanceKey(origin, destination)).Err(); err != nil {
		return fmt.Errorf("failed to delete distance from cache: %w", err)
	}
	return nil
}

// distanceKey hashes the case-folded pair so keys stay short and addresses
// are not stored in key names. Direction matters: A->B and B->A differ.
func distanceKey(origin, destination string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(origin)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(destination)))
	return distanceKeyPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}
