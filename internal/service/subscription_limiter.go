package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Erkezh/studypoint-edu/internal/util"
	"github.com/Erkezh/studypoint-edu/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const DefaultFreeDailyLimit = 25

// Unlimited never limits. Used when redis is not configured.
type Unlimited struct{}

func (Unlimited) Consume(context.Context, *LearnerProfile) error { return nil }
func (Unlimited) Refund(context.Context, *LearnerProfile)        {}

// RedisLimiter counts free questions per learner per UTC day in redis.
type RedisLimiter struct {
	Redis *redis.Client
	limit atomic.Int64
	now   func() time.Time
}

func NewRedisLimiter(rdb *redis.Client, dailyLimit int) *RedisLimiter {
	l := &RedisLimiter{Redis: rdb, now: func() time.Time { return time.Now().UTC() }}
	l.SetLimit(dailyLimit)
	return l
}

func (l *RedisLimiter) SetLimit(dailyLimit int) {
	if dailyLimit <= 0 {
		dailyLimit = DefaultFreeDailyLimit
	}
	l.limit.Store(int64(dailyLimit))
}

func (l *RedisLimiter) Limit() int {
	return int(l.limit.Load())
}

func (l *RedisLimiter) exempt(learner *LearnerProfile, now time.Time) bool {
	return learner.Role.Elevated() || learner.Subscription.Unlimited(now)
}

func usageKey(learnerID uint, now time.Time) string {
	return fmt.Sprintf("usage:questions:%d:%s", learnerID, now.Format(util.DateFormat))
}

// untilMidnight 到下一个 UTC 零点的时长，至少 60 秒
func untilMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return max(next.Sub(now), time.Minute)
}

func (l *RedisLimiter) Consume(ctx context.Context, learner *LearnerProfile) error {
	now := l.now()
	if l.exempt(learner, now) {
		return nil
	}

	key := usageKey(learner.ID, now)
	count, err := l.Redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("count free questions: %w", err)
	}
	if count == 1 {
		if err := l.Redis.Expire(ctx, key, untilMidnight(now)).Err(); err != nil {
			logger.Log.Warn("Failed to set usage key expiry", zap.String("key", key), zap.Error(err))
		}
	}
	if count > l.limit.Load() {
		// 超限的这一次不计数
		if err := l.Redis.Decr(ctx, key).Err(); err != nil {
			logger.Log.Warn("Failed to release over-limit question", zap.Uint("learner_id", learner.ID), zap.Error(err))
		}
		return fmt.Errorf("%w: %d questions per day", util.ErrQuotaExceeded, l.Limit())
	}
	return nil
}

func (l *RedisLimiter) Refund(ctx context.Context, learner *LearnerProfile) {
	now := l.now()
	if l.exempt(learner, now) {
		return
	}
	if err := l.Redis.Decr(ctx, usageKey(learner.ID, now)).Err(); err != nil {
		logger.Log.Warn("Failed to refund free question", zap.Uint("learner_id", learner.ID), zap.Error(err))
	}
}
