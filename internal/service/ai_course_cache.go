package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/observability"
)

const aiCourseCachePrefix = "content:v1:ai_course:"

// aiCourseCache stores populated mastery paths in Redis. A nil client disables caching.
type aiCourseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newAICourseCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *aiCourseCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &aiCourseCache{client: client, ttl: ttl, logger: logger}
}

func (c *aiCourseCache) get(ctx context.Context, id string) (dto.PopulatedAICourseResponse, bool) {
	if c == nil || c.client == nil {
		return dto.PopulatedAICourseResponse{}, false
	}
	payload, err := c.client.Get(ctx, aiCourseCachePrefix+id).Bytes()
	if err != nil {
		observability.CacheLookups().WithLabelValues("ai_course", "miss").Inc()
		return dto.PopulatedAICourseResponse{}, false
	}

	var result dto.PopulatedAICourseResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Warn().Err(err).Msg("failed to decode ai course cache")
		return dto.PopulatedAICourseResponse{}, false
	}
	observability.CacheLookups().WithLabelValues("ai_course", "hit").Inc()
	return result, true
}

func (c *aiCourseCache) set(ctx context.Context, id string, value dto.PopulatedAICourseResponse) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode ai course cache")
		return
	}
	if err := c.client.Set(ctx, aiCourseCachePrefix+id, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store ai course cache")
	}
}

func (c *aiCourseCache) invalidate(ctx context.Context, ids ...string) {
	if c == nil || c.client == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			keys = append(keys, aiCourseCachePrefix+id)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to invalidate ai course cache")
	}
}
