//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/klaviyo/knowledge-grader/config"
	"github.com/klaviyo/knowledge-grader/grader"
	"github.com/klaviyo/knowledge-grader/knowledge/rubric"
	"github.com/klaviyo/knowledge-grader/log"
	"github.com/klaviyo/knowledge-grader/model/openai"
	"github.com/klaviyo/knowledge-grader/model/tiktoken"
	"github.com/klaviyo/knowledge-grader/ratelimit"
	sredis "github.com/klaviyo/knowledge-grader/storage/redis"
	"github.com/klaviyo/knowledge-grader/telemetry/metric"
	"github.com/klaviyo/knowledge-grader/telemetry/trace"
)

const clientName = "knowledge-grader"

// documentGrader is implemented by *grader.Service.
type documentGrader interface {
	Grade(ctx context.Context, req grader.Request) (*grader.Result, error)
}

// newGrader assembles the grading service from configuration.
func newGrader(_ context.Context, cfg *config.Config) (documentGrader, error) {
	if err := cfg.RequireOpenAI(); err != nil {
		return nil, err
	}

	src, err := rubric.NewCachedSource(
		rubric.NewHTTPSource(
			rubric.WithTimeout(cfg.Rubric.Timeout),
			rubric.WithConvertHTML(cfg.Rubric.ConvertHTML),
		),
		rubric.WithTTL(cfg.Rubric.TTL),
	)
	if err != nil {
		return nil, fmt.Errorf("create rubric cache: %w", err)
	}

	modelOpts := []openai.Option{
		openai.WithAPIKey(cfg.OpenAI.APIKey),
		openai.WithOrganization(cfg.OpenAI.Organization),
		openai.WithTimeout(cfg.OpenAI.Timeout),
		openai.WithMaxRetries(cfg.OpenAI.MaxRetries),
	}
	if cfg.OpenAI.BaseURL != "" {
		modelOpts = append(modelOpts, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	m := openai.New(cfg.OpenAI.Model, modelOpts...)

	opts := []grader.Option{
		grader.WithChunkSize(cfg.Chunking.Size),
		grader.WithMaxRetrieved(cfg.Chunking.MaxRetrieved),
		grader.WithMaxDocumentChars(cfg.Document.MaxChars),
		grader.WithRubricURL(cfg.Rubric.URL),
	}
	if counter := newTokenCounter(cfg); counter != nil {
		opts = append(opts, grader.WithPromptCounter(counter))
	}
	return grader.New(src, grader.NewModelOracle(m), opts...)
}

// newTokenCounter returns nil when the model has no known encoding and the
// fallback cannot be loaded; previews then omit token counts.
func newTokenCounter(cfg *config.Config) *tiktoken.Counter {
	counter, err := tiktoken.New(cfg.OpenAI.Model)
	if err != nil {
		log.Warnf("token counts disabled: %v", err)
		return nil
	}
	return counter
}

// newLimiter builds the evaluate rate limiter. The returned close function is
// never nil.
func newLimiter(ctx context.Context, cfg *config.Config) (*ratelimit.Limiter, func(), error) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		return nil, noop, nil
	}
	opts := []ratelimit.Option{
		ratelimit.WithRate(cfg.RateLimit.Limit, cfg.RateLimit.Period),
		ratelimit.WithPrefix(cfg.RateLimit.Prefix),
	}
	closeFn := noop
	if cfg.RateLimit.RedisURL != "" {
		client, err := sredis.Connect(ctx, cfg.RateLimit.RedisURL, sredis.WithClientName(clientName))
		if err != nil {
			return nil, noop, fmt.Errorf("connect rate limit store: %w", err)
		}
		opts = append(opts, ratelimit.WithRedis(client))
		closeFn = func() {
			if err := client.Close(); err != nil {
				log.Warnf("close redis: %v", err)
			}
		}
	}
	l, err := ratelimit.New(opts...)
	if err != nil {
		closeFn()
		return nil, noop, err
	}
	return l, closeFn, nil
}

// startTelemetry starts OTLP trace and metric export when enabled.
func startTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}
	traceOpts := []trace.Option{trace.WithProtocol(cfg.Telemetry.Protocol)}
	metricOpts := []metric.Option{metric.WithProtocol(cfg.Telemetry.Protocol)}
	if cfg.Telemetry.Endpoint != "" {
		traceOpts = append(traceOpts, trace.WithEndpoint(cfg.Telemetry.Endpoint))
		metricOpts = append(metricOpts, metric.WithEndpoint(cfg.Telemetry.Endpoint))
	}

	stopTrace, err := trace.Start(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("start tracing: %w", err)
	}
	stopMetric, err := metric.Start(ctx, metricOpts...)
	if err != nil {
		_ = stopTrace()
		return nil, fmt.Errorf("start metrics: %w", err)
	}
	return func() {
		if err := errors.Join(stopMetric(), stopTrace()); err != nil {
			log.Warnf("stop telemetry: %v", err)
		}
	}, nil
}
