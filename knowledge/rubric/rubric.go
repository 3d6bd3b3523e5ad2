//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package rubric retrieves the grading rubric that is embedded in every
// evaluation prompt.
package rubric

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultURL is the help-center article that describes the grading rubric.
	DefaultURL = "https://help.klaviyo.com/hc/en-us/articles/40418535535387"
	// DefaultTTL is how long a fetched rubric is reused.
	DefaultTTL = time.Hour
)

// ErrFetch is returned when the rubric could not be retrieved.
var ErrFetch = errors.New("rubric fetch failed")

// Source returns the rubric text published at url.
type Source interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, url string) (string, error)

// Fetch implements Source.
func (f SourceFunc) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}
