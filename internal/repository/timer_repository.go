package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// TimerRepository persists the Global Timer start instant of a mock test in
// Redis, keyed by user+test. This anchor is the only durable state of the
// whole engine: the start instant is written on first section entry, read on
// every load to recompute remaining time, and deleted on final submission.
type TimerRepository struct {
	Redis *redis.Client
}

func NewTimerRepository(rdb *redis.Client) *TimerRepository {
	return &TimerRepository{Redis: rdb}
}

func anchorKey(userID, testID uint) string {
	return fmt.Sprintf("exam:anchor:%d:%d", userID, testID)
}

// GetAnchor returns the recorded start instant. ok=false means no anchor is
// recorded for this user+test.
func (r *TimerRepository) GetAnchor(ctx context.Context, userID, testID uint) (time.Time, bool, error) {
	val, err := r.Redis.Get(ctx, anchorKey(userID, testID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupted value: treat as absent so the budget restarts
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// SetAnchor records the start instant. The key carries a generous TTL so
// abandoned sessions do not accumulate forever; the tolerant stale-reset on
// read handles anything older anyway.
func (r *TimerRepository) SetAnchor(ctx context.Context, userID, testID uint, at time.Time, budget time.Duration) error {
	ttl := budget * 4
	if ttl < 24*time.Hour {
		ttl = 24 * time.Hour
	}
	return r.Redis.Set(ctx, anchorKey(userID, testID), strconv.FormatInt(at.UnixMilli(), 10), ttl).Err()
}

// ClearAnchor removes the anchor. Called only on successful final submission.
func (r *TimerRepository) ClearAnchor(ctx context.Context, userID, testID uint) error {
	return r.Redis.Del(ctx, anchorKey(userID, testID)).Err()
}
