package store

import (
	"context"

	"github.com/akolanti/DocAssist/internal/config"
	"github.com/akolanti/DocAssist/internal/domain/jobModel"
	"github.com/akolanti/DocAssist/pkg/logger_i"
)

// Open returns redis backed job and chat stores, falling back to in-memory
// stores when redis is offline and the fallback is enabled. ok is false when
// neither could be provided.
func Open(ctx context.Context, cfg config.RedisConfig) (jobModel.JobStore, jobModel.MessageStore, bool) {
	jobs := GetRedisJobStore(ctx, cfg)
	messages := GetRedisMessageStore(ctx, cfg)
	if jobs != nil && messages != nil {
		return jobs, messages, true
	}
	if !config.FALLBACK_REDIS_TO_INTERNALSTORE {
		return nil, nil, false
	}
	logger_i.NewLogger("store").Warn("redis stores are offline, using in-memory stores")
	return InitInMemoryJobStore(), InitMessageStore(), true
}
