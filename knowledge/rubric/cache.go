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
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/klaviyo/knowledge-grader/log"
)

const (
	defaultCacheSize = 16
	// sharedFetchTimeout bounds a fetch once it no longer follows any single
	// caller's context.
	sharedFetchTimeout = 30 * time.Second
)

type entry struct {
	content   string
	fetchedAt time.Time
}

// CachedSource memoizes another Source per URL for a fixed TTL.
// Concurrent misses for the same URL share one upstream fetch.
// Failed fetches are not cached.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	cache  *lru.Cache[string, entry]
	group  singleflight.Group
}

type cacheOptions struct {
	ttl  time.Duration
	size int
	now  func() time.Time
}

// CacheOption configures a CachedSource.
type CacheOption func(*cacheOptions)

// WithTTL sets how long an entry stays fresh.
func WithTTL(ttl time.Duration) CacheOption {
	return func(o *cacheOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithCacheSize sets the number of distinct URLs kept.
func WithCacheSize(size int) CacheOption {
	return func(o *cacheOptions) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CacheOption {
	return func(o *cacheOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewCachedSource wraps source with a TTL cache.
func NewCachedSource(source Source, opts ...CacheOption) (*CachedSource, error) {
	o := &cacheOptions{
		ttl:  DefaultTTL,
		size: defaultCacheSize,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	cache, err := lru.New[string, entry](o.size)
	if err != nil {
		return nil, fmt.Errorf("create rubric cache: %w", err)
	}
	return &CachedSource{
		source: source,
		ttl:    o.ttl,
		now:    o.now,
		cache:  cache,
	}, nil
}

// Fetch implements Source.
func (c *CachedSource) Fetch(ctx context.Context, url string) (string, error) {
	if e, ok := c.cache.Get(url); ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.content, nil
	}

	ch := c.group.DoChan(url, func() (any, error) {
		// Another caller may have refreshed the entry while we waited.
		if e, ok := c.cache.Get(url); ok && c.now().Sub(e.fetchedAt) < c.ttl {
			return e.content, nil
		}
		// The fetch is shared by every waiter, so it must outlive the caller
		// that happened to start it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		content, err := c.source.Fetch(fetchCtx, url)
		if err != nil {
			return "", err
		}
		c.cache.Add(url, entry{content: content, fetchedAt: c.now()})
		log.Debugf("rubric: cached %s for %s", url, c.ttl)
		return content, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Purge drops every cached rubric.
func (c *CachedSource) Purge() {
	c.cache.Purge()
}

// Len reports the number of cached URLs, fresh or stale.
func (c *CachedSource) Len() int {
	return c.cache.Len()
}
