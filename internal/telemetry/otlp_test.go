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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func TestCheckProtocol(t *testing.T) {
	require.NoError(t, CheckProtocol(ProtocolGRPC))
	require.NoError(t, CheckProtocol(ProtocolHTTP))
	require.ErrorIs(t, CheckProtocol("udp"), ErrUnsupportedProtocol)
}

func TestResolveEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "traces:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "generic:4317")

	assert.Equal(t, "explicit:4317", ResolveEndpoint(SignalTraces, ProtocolGRPC, "explicit:4317"))
	assert.Equal(t, "traces:4317", ResolveEndpoint(SignalTraces, ProtocolGRPC, ""))
	assert.Equal(t, "generic:4317", ResolveEndpoint(SignalMetrics, ProtocolGRPC, ""))

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	assert.Equal(t, "localhost:4317", ResolveEndpoint(SignalTraces, ProtocolGRPC, ""))
	assert.Equal(t, "localhost:4318", ResolveEndpoint(SignalMetrics, ProtocolHTTP, ""))
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Endpoint
		wantErr bool
	}{
		{name: "host port", in: "collector:4317", want: Endpoint{HostPort: "collector:4317"}},
		{name: "http url", in: "http://collector:4318", want: Endpoint{HostPort: "collector:4318"}},
		{name: "trailing slash", in: "http://collector:4318/", want: Endpoint{HostPort: "collector:4318"}},
		{
			name: "https with path",
			in:   "https://otel.example.com/api/public/otel/v1/traces",
			want: Endpoint{HostPort: "otel.example.com", Path: "/api/public/otel/v1/traces", Secure: true},
		},
		{name: "no host", in: "http:///v1/traces", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewGRPCConn(t *testing.T) {
	for _, ep := range []Endpoint{
		{HostPort: "localhost:4317"},
		{HostPort: "otel.example.com:443", Secure: true},
	} {
		conn, err := NewGRPCConn(ep)
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}
}

func TestNewResource(t *testing.T) {
	res, err := NewResource(context.Background(), "")
	require.NoError(t, err)

	attrs := map[string]string{}
	for _, kv := range res.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, ServiceName, attrs[string(semconv.ServiceNameKey)])
	assert.Equal(t, ServiceVersion, attrs[string(semconv.ServiceVersionKey)])
	assert.Equal(t, ServiceNamespace, attrs[string(semconv.ServiceNamespaceKey)])
}
