// Package coordinator drives the certificate pipeline end to end: asset
// resolution, rendering, PDF conversion, delivery, and audit logging, for
// single participants and bulk cohorts.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"certificate-pipeline/internal/common/database"
	"certificate-pipeline/internal/common/logger"
)

// Locker guards against two concurrent runs for the same participant.
type Locker interface {
	Acquire(ctx context.Context, participantID int64) (bool, error)
	Release(ctx context.Context, participantID int64)
}

// RedisLocker implements Locker with SETNX and a TTL, so a crashed worker
// cannot strand a participant locked forever.
type RedisLocker struct {
	redis *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

func NewRedisLocker(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *RedisLocker {
	return &RedisLocker{redis: redis, ttl: ttl, log: log}
}

func lockKey(participantID int64) string {
	return fmt.Sprintf("certificate:lock:%d", participantID)
}

func (l *RedisLocker) Acquire(ctx context.Context, participantID int64) (bool, error) {
	return l.redis.SetNX(ctx, lockKey(participantID), "1", l.ttl)
}

func (l *RedisLocker) Release(ctx context.Context, participantID int64) {
	if err := l.redis.Del(ctx, lockKey(participantID)); err != nil {
		l.log.Warn("failed to release participant lock", map[string]interface{}{
			"participantId": participantID,
			"error":         err.Error(),
		})
	}
}
