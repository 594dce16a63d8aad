// Package worker runs background jobs next to the API server.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Expirer cancels participations whose deadlines have passed.
type Expirer interface {
	ExpireLapsed(ctx context.Context) (int, error)
}

// releaseLock deletes the lock only if this sweeper still holds it.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DeadlineSweeper periodically expires lapsed participations. With Redis configured, only the
// replica holding the lock sweeps in a given round; without it every replica sweeps.
type DeadlineSweeper struct {
	expirer  Expirer
	rdb      *redis.Client
	interval time.Duration
	lockKey  string
}

func NewDeadlineSweeper(expirer Expirer, rdb *redis.Client, interval time.Duration, lockKey string) *DeadlineSweeper {
	return &DeadlineSweeper{
		expirer:  expirer,
		rdb:      rdb,
		interval: interval,
		lockKey:  lockKey,
	}
}

// Run sweeps every interval until ctx is done.
func (s *DeadlineSweeper) Run(ctx context.Context) {
	zap.L().Info("deadline sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("deadline sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zap.L().Error("deadline sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep runs one round and returns how many participations it cancelled.
func (s *DeadlineSweeper) Sweep(ctx context.Context) (int, error) {
	token, ok, err := s.lock(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		zap.L().Debug("deadline sweep skipped, lock held elsewhere")
		return 0, nil
	}
	defer s.unlock(token)

	n, err := s.expirer.ExpireLapsed(ctx)
	if err != nil {
		return n, fmt.Errorf("s.expirer.ExpireLapsed -> %w", err)
	}

	if n > 0 {
		zap.L().Info("deadline sweep done", zap.Int("cancelled", n))
	}

	return n, nil
}

func (s *DeadlineSweeper) lock(ctx context.Context) (string, bool, error) {
	if s.rdb == nil {
		return "", true, nil
	}

	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, s.lockKey, token, s.interval).Result()
	if err != nil {
		return "", false, fmt.Errorf("s.rdb.SetNX -> %w", err)
	}

	return token, ok, nil
}

func (s *DeadlineSweeper) unlock(token string) {
	if s.rdb == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseLock.Run(ctx, s.rdb, []string{s.lockKey}, token).Err(); err != nil {
		zap.L().Warn("failed to release sweeper lock", zap.Error(err))
	}
}
