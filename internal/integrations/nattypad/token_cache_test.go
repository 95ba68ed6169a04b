package nattypad

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCache_ConcurrentMissRefreshesOnce(t *testing.T) {
	cache := NewTokenCache(time.Hour)
	var calls int32

	refresh := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return "tok-1", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := cache.GetOrRefresh(context.Background(), refresh)
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", tok)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenCache_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := NewTokenCache(time.Hour)
	cache.now = func() time.Time { return now }

	n := 0
	refresh := func(context.Context) (string, error) {
		n++
		return "tok-" + string(rune('0'+n)), nil
	}

	tok, err := cache.GetOrRefresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	now = now.Add(59 * time.Minute)
	tok, _ = cache.GetOrRefresh(context.Background(), refresh)
	assert.Equal(t, "tok-1", tok)

	now = now.Add(time.Minute)
	tok, _ = cache.GetOrRefresh(context.Background(), refresh)
	assert.Equal(t, "tok-2", tok)
}

func TestTokenCache_FailedRefreshIsNotCached(t *testing.T) {
	cache := NewTokenCache(time.Hour)
	boom := errors.New("login down")

	_, err := cache.GetOrRefresh(context.Background(), func(context.Context) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)

	tok, err := cache.GetOrRefresh(context.Background(), func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", tok)
}

func TestTokenCache_Invalidate(t *testing.T) {
	cache := NewTokenCache(time.Hour)
	n := 0
	refresh := func(context.Context) (string, error) { n++; return "t", nil }

	_, _ = cache.GetOrRefresh(context.Background(), refresh)
	cache.Invalidate()
	_, _ = cache.GetOrRefresh(context.Background(), refresh)
	assert.Equal(t, 2, n)
}
