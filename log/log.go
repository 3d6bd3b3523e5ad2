//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package log is the leveled logger shared by the grader, its HTTP server
// and the CLI. It wraps a zap SugaredLogger behind a small interface so
// tests can swap it out.
package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats accepted by Setup.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Logger is the logging surface used across knowledge-grader.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// With returns a Logger that adds key-value pairs to every entry.
	With(keysAndValues ...any) Logger
}

// level is shared by every logger built here so Setup can change it after
// loggers have been handed out.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Default receives the package-level calls.
var Default Logger = New(FormatConsole, os.Stderr)

// Setup parses level and format and points Default at w.
func Setup(lvl, format string, w io.Writer) error {
	l, err := ParseLevel(lvl)
	if err != nil {
		return err
	}
	if format != FormatConsole && format != FormatJSON {
		return fmt.Errorf("log: unknown format %q", format)
	}
	level.SetLevel(l)
	Default = New(format, w)
	return nil
}

// ParseLevel accepts zap level names; empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log: %w", err)
	}
	return l, nil
}

// New builds a zap-backed Logger writing to w. Unknown formats fall back to
// console.
func New(format string, w io.Writer) Logger {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "lvl",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	var enc zapcore.Encoder
	if format == FormatJSON {
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return sugared{zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

// sugared backs Default. It skips one frame so callers of the package-level
// functions are reported.
type sugared struct {
	*zap.SugaredLogger
}

func (s sugared) With(keysAndValues ...any) Logger {
	return fielded{s.SugaredLogger.With(keysAndValues...).WithOptions(zap.AddCallerSkip(-1))}
}

// fielded is returned by With and is called directly.
type fielded struct {
	*zap.SugaredLogger
}

func (f fielded) With(keysAndValues ...any) Logger {
	return fielded{f.SugaredLogger.With(keysAndValues...)}
}

// With returns Default with extra fields.
func With(keysAndValues ...any) Logger {
	return Default.With(keysAndValues...)
}

// Debugf logs at debug level.
func Debugf(format string, args ...any) {
	Default.Debugf(format, args...)
}

// Infof logs at info level.
func Infof(format string, args ...any) {
	Default.Infof(format, args...)
}

// Warnf logs at warn level.
func Warnf(format string, args ...any) {
	Default.Warnf(format, args...)
}

// Errorf logs at error level.
func Errorf(format string, args ...any) {
	Default.Errorf(format, args...)
}
