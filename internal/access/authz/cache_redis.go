// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/kassa/internal/platform/constants"
)

// RedisCache implements [Cache] with an epoch counter and per-generation keys.
//
// # Key Layout
//
//	authz:epoch                      -> INCR'd by Invalidate
//	authz:snapshot:<epoch>:<account> -> JSON snapshot, expires after ttl
//
// Stale generations are never read again and simply expire.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a snapshot cache. ttl bounds how long a generation's
// entries survive.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

/*
Get returns the cached snapshot for the current generation.

Returns:
  - *Snapshot: nil on a miss
  - int64: generation observed
  - error: Redis failures
*/
func (cache *RedisCache) Get(context context.Context, accountID string) (*Snapshot, int64, error) {
	epoch, err := cache.epoch(context)
	if err != nil {
		return nil, 0, err
	}

	raw, err := cache.client.Get(context, snapshotKey(epoch, accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, epoch, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("redis_authz_cache_get_failed: %w", err)
	}

	snapshot := &Snapshot{}
	if err := json.Unmarshal(raw, snapshot); err != nil {
		// Corrupt entries are treated as misses and overwritten
		return nil, epoch, nil
	}
	snapshot.Permissions = NewPermissionSet(snapshot.PermissionNames...)

	return snapshot, epoch, nil
}

// Set stores snapshot under the generation observed by the preceding Get.
func (cache *RedisCache) Set(context context.Context, accountID string, stamp int64, snapshot *Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("redis_authz_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, snapshotKey(stamp, accountID), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_authz_cache_set_failed: %w", err)
	}

	return nil
}

// Invalidate starts a new generation.
func (cache *RedisCache) Invalidate(context context.Context) error {
	if err := cache.client.Incr(context, constants.RedisKeyAuthzEpoch).Err(); err != nil {
		return fmt.Errorf("redis_authz_cache_invalidate_failed: %w", err)
	}
	return nil
}

func (cache *RedisCache) epoch(context context.Context) (int64, error) {
	epoch, err := cache.client.Get(context, constants.RedisKeyAuthzEpoch).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis_authz_cache_epoch_failed: %w", err)
	}
	return epoch, nil
}

func snapshotKey(epoch int64, accountID string) string {
	return fmt.Sprintf("%s%d:%s", constants.RedisPrefixAuthzSnapshot, epoch, accountID)
}
