//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func restore(t *testing.T) {
	t.Helper()
	old, oldLevel := Default, level.Level()
	t.Cleanup(func() {
		Default = old
		level.SetLevel(oldLevel)
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &e), line)
		entries = append(entries, e)
	}
	return entries
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "debug", want: zapcore.DebugLevel},
		{in: "WARN", want: zapcore.WarnLevel},
		{in: "error", want: zapcore.ErrorLevel},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	require.NoError(t, Setup("warn", FormatJSON, &buf))
	Infof("dropped %d", 1)
	Warnf("rubric cache miss for %s", "https://example.com")
	Errorf("oracle down")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0]["lvl"])
	assert.Equal(t, "rubric cache miss for https://example.com", entries[0]["message"])
	assert.Equal(t, "error", entries[1]["lvl"])
}

func TestSetup_Invalid(t *testing.T) {
	restore(t)
	before := Default

	require.Error(t, Setup("loud", FormatJSON, &bytes.Buffer{}))
	require.Error(t, Setup("info", "xml", &bytes.Buffer{}))
	assert.Equal(t, before, Default)
}

func TestWith(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	require.NoError(t, Setup("debug", FormatJSON, &buf))
	reqLog := With("request_id", "abc")
	reqLog.Debugf("graded in %s", "1s")
	Debugf("no fields")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "abc", entries[0]["request_id"])
	assert.Equal(t, "graded in 1s", entries[0]["message"])
	assert.NotContains(t, entries[1], "request_id")
}

func TestCallerIsReported(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	require.NoError(t, Setup("info", FormatJSON, &buf))
	Infof("package level")
	reqLog := With("request_id", "abc")
	reqLog.Infof("with fields")
	reqLog.With("route", "/evaluate").Infof("nested fields")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Contains(t, e["caller"], "log/log_test.go", e["message"])
	}
	assert.Equal(t, "/evaluate", entries[2]["route"])
	assert.Equal(t, "abc", entries[2]["request_id"])
}

func TestConsoleFormat(t *testing.T) {
	restore(t)

	var buf bytes.Buffer
	Default = New("plain", &buf)
	Infof("listening on %s", ":8080")
	assert.Contains(t, buf.String(), "listening on :8080")
}

func TestPackageFuncsForward(t *testing.T) {
	restore(t)

	stub := &recorder{}
	Default = stub
	Debugf("d%d", 1)
	Infof("i%d", 2)
	Warnf("w%d", 3)
	Errorf("e%d", 4)
	With("k", "v").Infof("x")

	assert.Equal(t, []string{"d1", "i2", "w3", "e4", "[k v] x"}, stub.lines)
}

type recorder struct {
	fields []any
	lines  []string
	parent *recorder
}

func (r *recorder) add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	root := r
	if r.parent != nil {
		root = r.parent
		msg = fmt.Sprint(r.fields) + " " + msg
	}
	root.lines = append(root.lines, msg)
}

func (r *recorder) Debugf(format string, args ...any) { r.add(format, args...) }
func (r *recorder) Infof(format string, args ...any)  { r.add(format, args...) }
func (r *recorder) Warnf(format string, args ...any)  { r.add(format, args...) }
func (r *recorder) Errorf(format string, args ...any) { r.add(format, args...) }
func (r *recorder) With(kv ...any) Logger            { return &recorder{fields: kv, parent: r} }
