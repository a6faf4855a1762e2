package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const statisticCacheVersion = "pathstat:v1"

func statisticCacheKey(pathID string) string {
	return statisticCacheVersion + ":" + pathID
}

// invalidateStatistic drops the cached statistic for a path. Mutating
// services call it after any write that changes lesson counts or statuses;
// a failed delete only shortens cache freshness, so it is logged and ignored.
func invalidateStatistic(ctx context.Context, cache *redis.Client, pathID string, logger zerolog.Logger) {
	if cache == nil || pathID == "" {
		return
	}
	if err := cache.Del(ctx, statisticCacheKey(pathID)).Err(); err != nil {
		logger.Warn().Err(err).Str("path_id", pathID).Msg("failed to invalidate statistic cache")
	}
}
