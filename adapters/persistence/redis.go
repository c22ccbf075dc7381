package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

func NewRedisClient(ctx context.Context, cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.")
	return rdb, nil
}

const (
	cacheKeyPrefix = "candidates:filters:"
	statsKey       = cacheKeyPrefix + "stats"
)

type redisFilterCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisFilterCache(rdb *redis.Client, ttl time.Duration) service.FilterCache {
	return &redisFilterCache{rdb: rdb, ttl: ttl}
}

func vocabularyKey(name string) string {
	return cacheKeyPrefix + "vocab:" + name
}

func (c *redisFilterCache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *redisFilterCache) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, c.ttl).Err()
}

func (c *redisFilterCache) GetVocabulary(ctx context.Context, name string) ([]string, bool, error) {
	var values []string
	ok, err := c.getJSON(ctx, vocabularyKey(name), &values)
	return values, ok, err
}

func (c *redisFilterCache) SetVocabulary(ctx context.Context, name string, values []string) error {
	if values == nil {
		values = []string{}
	}
	return c.setJSON(ctx, vocabularyKey(name), values)
}

func (c *redisFilterCache) GetStats(ctx context.Context) (candidate.Stats, bool, error) {
	var st candidate.Stats
	ok, err := c.getJSON(ctx, statsKey, &st)
	return st, ok, err
}

func (c *redisFilterCache) SetStats(ctx context.Context, st candidate.Stats) error {
	return c.setJSON(ctx, statsKey, st)
}

func (c *redisFilterCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx,
		vocabularyKey(service.VocabularySchools),
		vocabularyKey(service.VocabularyWorkplaces),
		statsKey,
	).Err()
}
