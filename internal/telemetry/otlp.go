//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package telemetry

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrUnsupportedProtocol is returned for an OTLP protocol other than grpc or http.
var ErrUnsupportedProtocol = errors.New("telemetry: unsupported OTLP protocol")

// OTLP signals, as they appear in OTEL_EXPORTER_OTLP_<SIGNAL>_ENDPOINT.
const (
	SignalTraces  = "TRACES"
	SignalMetrics = "METRICS"
)

// CheckProtocol reports whether protocol can be exported.
func CheckProtocol(protocol string) error {
	switch protocol {
	case ProtocolGRPC, ProtocolHTTP:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProtocol, protocol)
	}
}

// ResolveEndpoint picks the collector address for signal. An explicit
// endpoint wins over OTEL_EXPORTER_OTLP_<SIGNAL>_ENDPOINT, which wins over
// OTEL_EXPORTER_OTLP_ENDPOINT. The protocol's local default comes last.
func ResolveEndpoint(signal, protocol, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_" + signal + "_ENDPOINT"); v != "" {
		return v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		return v
	}
	if protocol == ProtocolHTTP {
		return "localhost:4318"
	}
	return "localhost:4317"
}

// Endpoint is a parsed collector address.
type Endpoint struct {
	// HostPort is the dial address.
	HostPort string
	// Path replaces the exporter's default URL path when set. Only the HTTP
	// exporters use it.
	Path string
	// Secure is set for https URLs.
	Secure bool
}

// ParseEndpoint accepts "host:port" or a URL such as
// "https://collector.example.com/otlp/v1/traces".
func ParseEndpoint(raw string) (Endpoint, error) {
	if !strings.Contains(raw, "://") {
		if raw == "" {
			return Endpoint{}, errors.New("telemetry: empty endpoint")
		}
		return Endpoint{HostPort: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("telemetry: parse endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return Endpoint{}, fmt.Errorf("telemetry: no host in endpoint %q", raw)
	}
	ep := Endpoint{HostPort: u.Host, Secure: u.Scheme == "https"}
	if p := strings.TrimRight(u.Path, "/"); p != "" {
		ep.Path = u.Path
	}
	return ep, nil
}

// NewGRPCConn creates a client connection to the collector. Plain-text is
// used unless the endpoint was given as an https URL.
func NewGRPCConn(ep Endpoint) (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if ep.Secure {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	conn, err := grpc.NewClient(ep.HostPort, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("telemetry: connect to collector: %w", err)
	}
	return conn, nil
}

// NewResource describes this service to the collector.
func NewResource(ctx context.Context, version string) (*resource.Resource, error) {
	if version == "" {
		version = ServiceVersion
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNamespace(ServiceNamespace),
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(version),
		),
		resource.WithHost(),
		resource.WithProcessRuntimeVersion(),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}
	return res, nil
}
