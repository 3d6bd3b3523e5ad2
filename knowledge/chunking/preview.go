//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// PreviewChunking renders how text will be chunked: one string per chunk with
// the chunk's sentences joined by newlines.
func PreviewChunking(text string, chunkSize int) ([]string, error) {
	chunks, err := ChunkSentences(SplitSentences(text), chunkSize)
	if err != nil {
		return nil, err
	}
	preview := make([]string, len(chunks))
	for i, chunk := range chunks {
		preview[i] = strings.Join(chunk, "\n")
	}
	return preview, nil
}

// FormatBreakdown renders a chunk preview as the block embedded into the
// evaluation prompt:
//
//	CHUNK 1:
//	<sentences>
//	---
//
//	CHUNK 2:
//	...
func FormatBreakdown(preview []string) string {
	var b strings.Builder
	for i, chunk := range preview {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("CHUNK ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(":\n")
		b.WriteString(chunk)
		b.WriteString("\n---")
	}
	return b.String()
}

// TokenCounter estimates the number of model tokens in a text.
type TokenCounter interface {
	CountText(text string) (int, error)
}

// ChunkStats describes a single predicted chunk.
type ChunkStats struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Sentences int    `json:"sentences"`
	Runes     int    `json:"characters"`
	Tokens    int    `json:"tokens,omitempty"`
}

// Breakdown is the full chunk prediction for a document.
type Breakdown struct {
	ChunkSize             int          `json:"chunkSize"`
	SentenceCount         int          `json:"sentenceCount"`
	Chunks                []ChunkStats `json:"chunks"`
	MaxRetrieved          int          `json:"maxRetrieved"`
	ExceedsRetrievalLimit bool         `json:"exceedsRetrievalLimit"`
}

// Preview returns the chunk texts in order.
func (b *Breakdown) Preview() []string {
	preview := make([]string, len(b.Chunks))
	for i, c := range b.Chunks {
		preview[i] = c.Text
	}
	return preview
}

type analyzeOptions struct {
	chunkSize    int
	maxRetrieved int
	counter      TokenCounter
}

// AnalyzeOption configures Analyze.
type AnalyzeOption func(*analyzeOptions)

// WithAnalyzeChunkSize overrides DefaultChunkSize.
func WithAnalyzeChunkSize(size int) AnalyzeOption {
	return func(o *analyzeOptions) { o.chunkSize = size }
}

// WithMaxRetrieved overrides DefaultMaxRetrieved.
func WithMaxRetrieved(n int) AnalyzeOption {
	return func(o *analyzeOptions) { o.maxRetrieved = n }
}

// WithTokenCounter fills ChunkStats.Tokens using counter.
func WithTokenCounter(counter TokenCounter) AnalyzeOption {
	return func(o *analyzeOptions) { o.counter = counter }
}

// Analyze predicts the chunking of text and gathers per-chunk statistics.
func Analyze(text string, opts ...AnalyzeOption) (*Breakdown, error) {
	o := &analyzeOptions{
		chunkSize:    DefaultChunkSize,
		maxRetrieved: DefaultMaxRetrieved,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxRetrieved < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxRetrieved, o.maxRetrieved)
	}

	sentences := SplitSentences(text)
	chunks, err := ChunkSentences(sentences, o.chunkSize)
	if err != nil {
		return nil, err
	}

	b := &Breakdown{
		ChunkSize:             o.chunkSize,
		SentenceCount:         len(sentences),
		Chunks:                make([]ChunkStats, len(chunks)),
		MaxRetrieved:          o.maxRetrieved,
		ExceedsRetrievalLimit: o.maxRetrieved > 0 && len(chunks) > o.maxRetrieved,
	}
	for i, chunk := range chunks {
		joined := strings.Join(chunk, "\n")
		stats := ChunkStats{
			Index:     i + 1,
			Text:      joined,
			Sentences: len(chunk),
			Runes:     utf8.RuneCountInString(joined),
		}
		if o.counter != nil {
			n, err := o.counter.CountText(joined)
			if err != nil {
				return nil, fmt.Errorf("count tokens for chunk %d: %w", i+1, err)
			}
			stats.Tokens = n
		}
		b.Chunks[i] = stats
	}
	return b, nil
}
