//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package rubric

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func countingSource(calls *atomic.Int32) Source {
	return SourceFunc(func(_ context.Context, url string) (string, error) {
		n := calls.Add(1)
		return fmt.Sprintf("%s#%d", url, n), nil
	})
}

func TestCachedSource_TTL(t *testing.T) {
	var calls atomic.Int32
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c, err := NewCachedSource(countingSource(&calls), WithClock(clock.Now))
	require.NoError(t, err)
	ctx := context.Background()

	got, err := c.Fetch(ctx, DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, DefaultURL+"#1", got)

	clock.Advance(59 * time.Minute)
	got, err = c.Fetch(ctx, DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, DefaultURL+"#1", got)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Minute)
	got, err = c.Fetch(ctx, DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, DefaultURL+"#2", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedSource_KeyedByURL(t *testing.T) {
	var calls atomic.Int32
	c, err := NewCachedSource(countingSource(&calls))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := c.Fetch(ctx, "https://example.com/a")
	require.NoError(t, err)
	b, err := c.Fetch(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, err = c.Fetch(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCachedSource_ErrorsNotCached(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(context.Context, string) (string, error) {
		if calls.Add(1) == 1 {
			return "", fmt.Errorf("%w: boom", ErrFetch)
		}
		return "rubric", nil
	})
	c, err := NewCachedSource(src, WithTTL(time.Hour), WithCacheSize(4))
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), DefaultURL)
	require.True(t, errors.Is(err, ErrFetch))

	got, err := c.Fetch(context.Background(), DefaultURL)
	require.NoError(t, err)
	assert.Equal(t, "rubric", got)
}

func TestCachedSource_ConcurrentMissesShareFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	src := SourceFunc(func(context.Context, string) (string, error) {
		calls.Add(1)
		<-release
		return "rubric", nil
	})
	c, err := NewCachedSource(src)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.Fetch(context.Background(), DefaultURL)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "rubric", r)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedSource_CancelledCallerDoesNotFailWaiters(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var fetchErr atomic.Value
	var once sync.Once
	src := SourceFunc(func(ctx context.Context, _ string) (string, error) {
		once.Do(func() { close(started) })
		<-release
		if err := ctx.Err(); err != nil {
			fetchErr.Store(err)
			return "", err
		}
		return "rubric", nil
	})
	c, err := NewCachedSource(src)
	require.NoError(t, err)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(firstCtx, DefaultURL)
		firstErr <- err
	}()
	<-started

	second := make(chan string, 1)
	go func() {
		got, _ := c.Fetch(context.Background(), DefaultURL)
		second <- got
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	assert.Equal(t, "rubric", <-second)
	assert.Nil(t, fetchErr.Load())
	assert.Equal(t, 1, c.Len())
}
