package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const lockKey = "exhibition:deadline-sweeper"

type MockExpirer struct {
	mock.Mock
}

func (m *MockExpirer) ExpireLapsed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func TestDeadlineSweeper_Sweep(t *testing.T) {
	t.Run("sweeps and releases the lock", func(t *testing.T) {
		mr, rdb := newRedis(t)
		expirer := new(MockExpirer)
		expirer.On("ExpireLapsed", mock.Anything).Return(3, nil).Once()

		s := NewDeadlineSweeper(expirer, rdb, time.Minute, lockKey)
		n, err := s.Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.False(t, mr.Exists(lockKey))
		expirer.AssertExpectations(t)
	})

	t.Run("skips while another replica holds the lock", func(t *testing.T) {
		mr, rdb := newRedis(t)
		require.NoError(t, mr.Set(lockKey, "other-replica"))
		expirer := new(MockExpirer)

		s := NewDeadlineSweeper(expirer, rdb, time.Minute, lockKey)
		n, err := s.Sweep(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, n)
		expirer.AssertNotCalled(t, "ExpireLapsed", mock.Anything)

		got, err := mr.Get(lockKey)
		require.NoError(t, err)
		assert.Equal(t, "other-replica", got)
	})

	t.Run("lock is released when the sweep fails", func(t *testing.T) {
		mr, rdb := newRedis(t)
		expirer := new(MockExpirer)
		expirer.On("ExpireLapsed", mock.Anything).Return(1, errors.New("db down")).Once()

		s := NewDeadlineSweeper(expirer, rdb, time.Minute, lockKey)
		n, err := s.Sweep(context.Background())

		assert.ErrorContains(t, err, "db down")
		assert.Equal(t, 1, n)
		assert.False(t, mr.Exists(lockKey))
	})

	t.Run("without redis every round sweeps", func(t *testing.T) {
		expirer := new(MockExpirer)
		expirer.On("ExpireLapsed", mock.Anything).Return(0, nil).Twice()

		s := NewDeadlineSweeper(expirer, nil, time.Minute, lockKey)
		_, err := s.Sweep(context.Background())
		require.NoError(t, err)
		_, err = s.Sweep(context.Background())
		require.NoError(t, err)

		expirer.AssertExpectations(t)
	})
}

func TestDeadlineSweeper_RunStopsWithContext(t *testing.T) {
	expirer := new(MockExpirer)
	expirer.On("ExpireLapsed", mock.Anything).Return(0, nil).Maybe()

	s := NewDeadlineSweeper(expirer, nil, 10*time.Millisecond, lockKey)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
