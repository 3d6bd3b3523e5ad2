//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package ratelimit counts requests per client key over a fixed window.
// The counter store is swappable: in-memory for a single process, redis when
// several replicas share one budget.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	// DefaultLimit is the number of requests allowed per period.
	DefaultLimit = 10
	// DefaultPeriod is the window length.
	DefaultPeriod = time.Minute
	// DefaultPrefix namespaces counter keys in the store.
	DefaultPrefix = "knowledge-grader:ratelimit"
)

// ErrInvalidRate is returned when the limit or period is not positive.
var ErrInvalidRate = errors.New("rate limit and period must be positive")

// Result describes the state of a key after one request was counted.
type Result struct {
	Limit     int64
	Remaining int64
	Reset     time.Time
	Reached   bool
}

// RetryAfter returns how long the caller should wait before retrying,
// rounded up to whole seconds and never below one second.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.Reset.Sub(now)
	if d <= time.Second {
		return time.Second
	}
	return (d + time.Second - 1).Truncate(time.Second)
}

// RateConfig is a limit per period.
type RateConfig struct {
	Limit  int64
	Period time.Duration
}

// ToLimiterRate converts RateConfig to limiter.Rate.
func (rc RateConfig) ToLimiterRate() limiter.Rate {
	return limiter.Rate{
		Period: rc.Period,
		Limit:  rc.Limit,
	}
}

// Validate checks the rate is usable.
func (rc RateConfig) Validate() error {
	if rc.Limit <= 0 || rc.Period <= 0 {
		return fmt.Errorf("%w: limit=%d period=%s", ErrInvalidRate, rc.Limit, rc.Period)
	}
	return nil
}

// Limiter increments and checks per-key counters.
type Limiter struct {
	limiter *limiter.Limiter
	rate    RateConfig
}

type options struct {
	rate   RateConfig
	prefix string
	redis  goredis.UniversalClient
}

// Option configures a Limiter.
type Option func(*options)

// WithRate sets the limit per period.
func WithRate(limit int64, period time.Duration) Option {
	return func(o *options) {
		o.rate = RateConfig{Limit: limit, Period: period}
	}
}

// WithPrefix namespaces the counter keys.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithRedis stores counters in redis instead of process memory.
func WithRedis(client goredis.UniversalClient) Option {
	return func(o *options) {
		o.redis = client
	}
}

// New creates a Limiter.
func New(opts ...Option) (*Limiter, error) {
	o := &options{
		rate:   RateConfig{Limit: DefaultLimit, Period: DefaultPeriod},
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.rate.Validate(); err != nil {
		return nil, err
	}

	storeOpts := limiter.StoreOptions{
		Prefix:   o.prefix,
		MaxRetry: limiter.DefaultMaxRetry,
	}
	var store limiter.Store
	if o.redis != nil {
		s, err := sredis.NewStoreWithOptions(o.redis, storeOpts)
		if err != nil {
			return nil, fmt.Errorf("create redis rate limit store: %w", err)
		}
		store = s
	} else {
		storeOpts.CleanUpInterval = limiter.DefaultCleanUpInterval
		store = memory.NewStoreWithOptions(storeOpts)
	}

	return &Limiter{
		limiter: limiter.New(store, o.rate.ToLimiterRate()),
		rate:    o.rate,
	}, nil
}

// Rate returns the configured rate.
func (l *Limiter) Rate() RateConfig {
	return l.rate
}

// Allow counts one request for key and reports whether the budget is spent.
// The window for a key starts at its first request and resets after the period.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	lctx, err := l.limiter.Get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %q: %w", key, err)
	}
	return Result{
		Limit:     lctx.Limit,
		Remaining: lctx.Remaining,
		Reset:     time.Unix(lctx.Reset, 0),
		Reached:   lctx.Reached,
	}, nil
}

// Peek reports the state of key without counting a request.
func (l *Limiter) Peek(ctx context.Context, key string) (Result, error) {
	lctx, err := l.limiter.Peek(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit %q: %w", key, err)
	}
	return Result{
		Limit:     lctx.Limit,
		Remaining: lctx.Remaining,
		Reset:     time.Unix(lctx.Reset, 0),
		Reached:   lctx.Reached,
	}, nil
}

// Reset clears the counter for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if _, err := l.limiter.Reset(ctx, key); err != nil {
		return fmt.Errorf("reset rate limit %q: %w", key, err)
	}
	return nil
}
