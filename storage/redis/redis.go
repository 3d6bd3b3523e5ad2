//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package redis opens the redis connection shared by distributed counters.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPingTimeout bounds the liveness check done by Connect.
const DefaultPingTimeout = 3 * time.Second

// ErrEmptyURL is returned when no redis URL is configured.
var ErrEmptyURL = errors.New("redis: empty url")

type options struct {
	clientName  string
	pingTimeout time.Duration
}

// Option configures Connect.
type Option func(*options)

// WithClientName reports name to the server with CLIENT SETNAME, overriding
// any client_name query parameter in the URL.
func WithClientName(name string) Option {
	return func(o *options) {
		o.clientName = name
	}
}

// WithPingTimeout changes how long Connect waits for PING.
func WithPingTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pingTimeout = d
		}
	}
}

// ParseURL turns redis://[user:pass@]host:port[/db][?options] (or rediss://
// for TLS) into client options. Query options follow go-redis ParseURL.
func ParseURL(rawURL string) (*redis.UniversalOptions, error) {
	if rawURL == "" {
		return nil, ErrEmptyURL
	}
	o, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	return &redis.UniversalOptions{
		Addrs:           []string{o.Addr},
		DB:              o.DB,
		Username:        o.Username,
		Password:        o.Password,
		Protocol:        o.Protocol,
		ClientName:      o.ClientName,
		TLSConfig:       o.TLSConfig,
		MaxRetries:      o.MaxRetries,
		DialTimeout:     o.DialTimeout,
		ReadTimeout:     o.ReadTimeout,
		WriteTimeout:    o.WriteTimeout,
		PoolSize:        o.PoolSize,
		PoolTimeout:     o.PoolTimeout,
		MinIdleConns:    o.MinIdleConns,
		MaxIdleConns:    o.MaxIdleConns,
		ConnMaxIdleTime: o.ConnMaxIdleTime,
		ConnMaxLifetime: o.ConnMaxLifetime,
	}, nil
}

// Connect opens a client for rawURL and fails unless the server answers
// PING. The caller owns the returned client.
func Connect(ctx context.Context, rawURL string, opts ...Option) (redis.UniversalClient, error) {
	o := &options{pingTimeout: DefaultPingTimeout}
	for _, opt := range opts {
		opt(o)
	}
	uo, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if o.clientName != "" {
		uo.ClientName = o.clientName
	}

	client := redis.NewUniversalClient(uo)
	pingCtx, cancel := context.WithTimeout(ctx, o.pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", uo.Addrs[0], err)
	}
	return client, nil
}
