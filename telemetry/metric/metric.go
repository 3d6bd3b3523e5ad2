//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package metric exposes the process-wide OpenTelemetry meter.
package metric

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	noopm "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	itelemetry "github.com/klaviyo/knowledge-grader/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Meter records the grader and server instruments. It is a noop until Start.
var Meter metric.Meter = noopm.Meter{}

// Option configures Start.
type Option func(*options)

type options struct {
	endpoint       string
	protocol       string
	serviceVersion string
	interval       time.Duration
}

// WithEndpoint sets the collector as "host:port" or as a URL. Without it the
// OTEL_EXPORTER_OTLP_METRICS_ENDPOINT and OTEL_EXPORTER_OTLP_ENDPOINT
// variables are consulted.
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

// WithExportInterval sets how often metrics are pushed. The SDK default is
// one minute.
func WithExportInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// Start installs a periodic OTLP metric exporter and replaces Meter. The
// returned function flushes and restores the noop meter.
func Start(ctx context.Context, opts ...Option) (clean func() error, err error) {
	o := &options{
		protocol:       itelemetry.ProtocolGRPC,
		serviceVersion: itelemetry.ServiceVersion,
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := itelemetry.CheckProtocol(o.protocol); err != nil {
		return nil, err
	}

	ep, err := itelemetry.ParseEndpoint(
		itelemetry.ResolveEndpoint(itelemetry.SignalMetrics, o.protocol, o.endpoint))
	if err != nil {
		return nil, err
	}
	res, err := itelemetry.NewResource(ctx, o.serviceVersion)
	if err != nil {
		return nil, err
	}
	exporter, err := newExporter(ctx, ep, o.protocol)
	if err != nil {
		return nil, fmt.Errorf("metric: create %s exporter: %w", o.protocol, err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if o.interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(o.interval))
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)
	Meter = provider.Meter(itelemetry.InstrumentName)

	return func() error {
		Meter = noopm.Meter{}
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(sctx); err != nil {
			return fmt.Errorf("metric: shutdown: %w", err)
		}
		return nil
	}, nil
}

func newExporter(ctx context.Context, ep itelemetry.Endpoint, protocol string) (sdkmetric.Exporter, error) {
	if protocol == itelemetry.ProtocolHTTP {
		httpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(ep.HostPort)}
		if !ep.Secure {
			httpOpts = append(httpOpts, otlpmetrichttp.WithInsecure())
		}
		if ep.Path != "" {
			httpOpts = append(httpOpts, otlpmetrichttp.WithURLPath(ep.Path))
		}
		return otlpmetrichttp.New(ctx, httpOpts...)
	}

	conn, err := itelemetry.NewGRPCConn(ep)
	if err != nil {
		return nil, err
	}
	return otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
}
