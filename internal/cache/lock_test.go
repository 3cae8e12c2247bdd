package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	token, ok, err := l.AcquireLock(ctx, "records:taxi_booking", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = l.AcquireLock(ctx, "records:taxi_booking", time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	_, ok, _ = l.AcquireLock(ctx, "records:device_loan", time.Second)
	assert.True(t, ok, "independent keys do not contend")

	require.NoError(t, l.ReleaseLock(ctx, "records:taxi_booking", "someone-else"))
	_, ok, _ = l.AcquireLock(ctx, "records:taxi_booking", time.Second)
	assert.False(t, ok, "foreign token must not release")

	require.NoError(t, l.ReleaseLock(ctx, "records:taxi_booking", token))
	_, ok, _ = l.AcquireLock(ctx, "records:taxi_booking", time.Second)
	assert.True(t, ok)
}

func TestLocalLocker_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	_, ok, _ := l.AcquireLock(ctx, "k", 5*time.Second)
	require.True(t, ok)

	now = now.Add(5 * time.Second)
	_, ok, _ = l.AcquireLock(ctx, "k", 5*time.Second)
	assert.True(t, ok, "expired lock is free")
}

func TestLocalLocker_SingleWinner(t *testing.T) {
	l := NewLocalLocker()
	var winners atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := l.AcquireLock(context.Background(), "k", time.Minute); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestNewRedisLocker(t *testing.T) {
	client := NewRedisClient(RedisOptions{Addr: "localhost:6379"})
	defer client.Close()

	l := NewRedisLocker(client, func() string { return "fixed" })
	assert.NotNil(t, l)
	assert.Equal(t, "fixed", l.tokens())
}
