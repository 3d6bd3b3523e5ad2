//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2025 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package batch grades many documents concurrently on a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/klaviyo/knowledge-grader/grader"
	"github.com/klaviyo/knowledge-grader/knowledge/document"
	"github.com/klaviyo/knowledge-grader/knowledge/document/reader"
)

// DefaultParallelism bounds concurrent oracle calls.
const DefaultParallelism = 4

// Grader grades a single document.
type Grader interface {
	Grade(ctx context.Context, req grader.Request) (*grader.Result, error)
}

// Item is the outcome for one document. Exactly one of Result and Err is set.
type Item struct {
	Name     string             `json:"name"`
	Source   string             `json:"source,omitempty"`
	Document *document.Document `json:"-"`
	Result   *grader.Result     `json:"result,omitempty"`
	Err      error              `json:"-"`
	Error    string             `json:"error,omitempty"`
}

// Report holds the items in input order and their statistics.
type Report struct {
	Items []Item `json:"items"`
	Stats *Stats `json:"stats"`
}

type options struct {
	parallelism  int
	rubricURL    string
	showProgress bool
	showStats    bool
	progressStep int
}

// Option configures Grade.
type Option func(*options)

// WithParallelism sets the number of documents graded at once.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithRubricURL grades every document against the same rubric.
func WithRubricURL(url string) Option {
	return func(o *options) {
		o.rubricURL = url
	}
}

// WithProgress logs progress every step documents.
func WithProgress(show bool, step int) Option {
	return func(o *options) {
		o.showProgress = show
		o.progressStep = step
	}
}

// WithStats logs the grade statistics when the batch finishes.
func WithStats(show bool) Option {
	return func(o *options) {
		o.showStats = show
	}
}

// Grade grades docs concurrently. Per-document failures are reported in the
// matching Item; the returned error covers only pool failures.
func Grade(ctx context.Context, g Grader, docs []*document.Document, opts ...Option) (*Report, error) {
	o := &options{
		parallelism:  DefaultParallelism,
		progressStep: 10,
	}
	for _, opt := range opts {
		opt(o)
	}

	pool, err := ants.NewPool(o.parallelism)
	if err != nil {
		return nil, fmt.Errorf("create grading worker pool: %w", err)
	}
	defer pool.Release()

	aggr := newAggregator(len(docs), o.showProgress, o.progressStep)
	items := make([]Item, len(docs))

	var wg sync.WaitGroup
	var submitErr error
	for i, doc := range docs {
		items[i] = Item{Name: doc.Name, Document: doc}
		if src, ok := doc.Metadata[reader.MetaSource].(string); ok {
			items[i].Source = src
		}

		wg.Add(1)
		idx := i
		task := func() {
			defer wg.Done()
			item := &items[idx]
			if err := ctx.Err(); err != nil {
				item.setErr(err)
			} else {
				item.Result, item.Err = g.Grade(ctx, grader.Request{
					DocumentText: item.Document.Content,
					RubricURL:    o.rubricURL,
				})
				if item.Err != nil {
					item.setErr(item.Err)
				}
			}
			ev := event{name: item.Name, err: item.Err}
			if item.Result != nil {
				ev.grade = item.Result.Grade
			}
			aggr.events <- ev
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			submitErr = fmt.Errorf("submit grading task for %s: %w", doc.Name, err)
			break
		}
	}

	wg.Wait()
	stats := aggr.Close()
	if submitErr != nil {
		return nil, submitErr
	}
	if o.showStats && len(docs) > 0 {
		stats.Log()
	}
	return &Report{Items: items, Stats: stats}, nil
}

func (it *Item) setErr(err error) {
	it.Result = nil
	it.Err = err
	it.Error = err.Error()
}
