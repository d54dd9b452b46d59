package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/hrfocus/erp_backend/config"
	"github.com/bsm/redislock"
)

// UnlockFunc releases a held schedule lock. Release is compare-and-delete
// on the lock token, so a lock re-acquired by a newer holder after TTL
// expiry is never released by the old one.
type UnlockFunc func()

// ScheduleLocker is the per-schedule mutual-exclusion primitive. TryLock
// returns ok=false both when the lock is already held and when the backing
// store is unavailable: the sweep treats either as "skip this tick", it
// must never crash on lock trouble.
type ScheduleLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, bool)
}

// ScheduleLockKey is the redis key for one schedule's lock.
func ScheduleLockKey(scheduleId int) string {
	return fmt.Sprintf("report:schedule:%d", scheduleId)
}

// RedisScheduleLocker backs ScheduleLocker with redislock (SET NX with a
// random token, token-checked release).
type RedisScheduleLocker struct{}

func (RedisScheduleLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, bool) {
	client := config.GetRedisLock()
	if client == nil {
		return nil, false
	}

	lock, err := client.Obtain(ctx, key, ttl, nil)
	if err != nil {
		// ErrNotObtained and infrastructure errors both mean "not ours".
		return nil, false
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && err != redislock.ErrLockNotHeld {
			config.GetLogger().Warn("failed to release schedule lock " + key + ": " + err.Error())
		}
	}
	return release, true
}
