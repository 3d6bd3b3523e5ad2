//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package trace exposes the process-wide OpenTelemetry tracer. It is a noop
// until Start installs an OTLP exporter.
package trace

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	itelemetry "github.com/klaviyo/knowledge-grader/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

var (
	// TracerProvider is the provider installed by Start.
	TracerProvider trace.TracerProvider = noop.NewTracerProvider()
	// Tracer creates the grader's spans.
	Tracer trace.Tracer = TracerProvider.Tracer(itelemetry.InstrumentName)
)

// Option configures Start.
type Option func(*options)

type options struct {
	endpoint       string
	protocol       string
	serviceVersion string
	headers        map[string]string
	sampleRatio    float64
}

// WithEndpoint sets the collector as "host:port" or as a URL. A URL path
// replaces /v1/traces for the http protocol and an https scheme enables TLS.
// Without this option the OTEL_EXPORTER_OTLP_TRACES_ENDPOINT and
// OTEL_EXPORTER_OTLP_ENDPOINT variables are consulted.
func WithEndpoint(endpoint string) Option {
	return func(o *options) { o.endpoint = endpoint }
}

// WithProtocol selects "grpc" (default) or "http".
func WithProtocol(protocol string) Option {
	return func(o *options) { o.protocol = protocol }
}

// WithServiceVersion overrides the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(o *options) { o.serviceVersion = version }
}

// WithHeaders adds headers to every export request, e.g. collector auth.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) { o.headers = headers }
}

// WithSampleRatio samples that fraction of root spans. Child spans follow
// their parent. Defaults to 1.
func WithSampleRatio(ratio float64) Option {
	return func(o *options) { o.sampleRatio = ratio }
}

// Start installs an OTLP span exporter and replaces Tracer. The returned
// function flushes pending spans and restores the noop tracer.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	o := &options{
		protocol:       itelemetry.ProtocolGRPC,
		serviceVersion: itelemetry.ServiceVersion,
		sampleRatio:    1,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := itelemetry.CheckProtocol(o.protocol); err != nil {
		return nil, err
	}
	if o.sampleRatio < 0 || o.sampleRatio > 1 {
		return nil, fmt.Errorf("trace: sample ratio %v outside [0, 1]", o.sampleRatio)
	}

	ep, err := itelemetry.ParseEndpoint(
		itelemetry.ResolveEndpoint(itelemetry.SignalTraces, o.protocol, o.endpoint))
	if err != nil {
		return nil, err
	}
	res, err := itelemetry.NewResource(ctx, o.serviceVersion)
	if err != nil {
		return nil, err
	}
	exporter, err := newExporter(ctx, ep, o)
	if err != nil {
		return nil, fmt.Errorf("trace: create %s exporter: %w", o.protocol, err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.sampleRatio))),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	TracerProvider = provider
	Tracer = provider.Tracer(itelemetry.InstrumentName)

	return func() error {
		TracerProvider = noop.NewTracerProvider()
		Tracer = TracerProvider.Tracer(itelemetry.InstrumentName)
		// ctx is usually cancelled by the time the process shuts down.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(sctx); err != nil {
			return fmt.Errorf("trace: shutdown: %w", err)
		}
		return nil
	}, nil
}

func newExporter(ctx context.Context, ep itelemetry.Endpoint, o *options) (sdktrace.SpanExporter, error) {
	if o.protocol == itelemetry.ProtocolHTTP {
		httpOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(ep.HostPort),
			otlptracehttp.WithHeaders(o.headers),
		}
		if !ep.Secure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		if ep.Path != "" {
			httpOpts = append(httpOpts, otlptracehttp.WithURLPath(ep.Path))
		}
		return otlptracehttp.New(ctx, httpOpts...)
	}

	conn, err := itelemetry.NewGRPCConn(ep)
	if err != nil {
		return nil, err
	}
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithGRPCConn(conn),
		otlptracegrpc.WithHeaders(o.headers),
	)
}

// End marks span as failed when err is non-nil and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
