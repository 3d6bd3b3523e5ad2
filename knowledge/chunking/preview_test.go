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
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewChunking(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		chunkSize int
		expected  []string
	}{
		{
			name:      "empty",
			input:     "",
			chunkSize: DefaultChunkSize,
			expected:  []string{},
		},
		{
			name:      "shipping",
			input:     shippingDoc,
			chunkSize: DefaultChunkSize,
			expected: []string{
				"Ground Shipping\nDelivery in 5-7 days.\nCost is $5.99.\nFree over $50.\nExpress Shipping\nDelivery in 2-3 days.",
			},
		},
		{
			name:      "blank_lines_between_paragraphs",
			input:     "Returns\n\n\n\nItems can be returned within 30 days. Refunds take 5 days.",
			chunkSize: 2,
			expected: []string{
				"Returns\nItems can be returned within 30 days.",
				"Refunds take 5 days.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preview, err := PreviewChunking(tt.input, tt.chunkSize)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, preview)
		})
	}
}

func TestPreviewChunking_InvalidSize(t *testing.T) {
	_, err := PreviewChunking("Text", 0)
	require.ErrorIs(t, err, ErrInvalidChunkSize)
}

func TestFormatBreakdown(t *testing.T) {
	assert.Equal(t, "", FormatBreakdown(nil))
	assert.Equal(t,
		"CHUNK 1:\nGround Shipping\nCost is $5.99.\n---\n\nCHUNK 2:\nExpress Shipping\n---",
		FormatBreakdown([]string{"Ground Shipping\nCost is $5.99.", "Express Shipping"}),
	)
}

type wordCounter struct {
	err error
}

func (w wordCounter) CountText(text string) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return len(strings.Fields(text)), nil
}

func TestAnalyze(t *testing.T) {
	text := strings.Repeat("Policy line.\n", 13)

	b, err := Analyze(text, WithTokenCounter(wordCounter{}))
	require.NoError(t, err)
	require.Equal(t, DefaultChunkSize, b.ChunkSize)
	require.Equal(t, 13, b.SentenceCount)
	require.Len(t, b.Chunks, 3)
	require.False(t, b.ExceedsRetrievalLimit)
	require.Equal(t, DefaultMaxRetrieved, b.MaxRetrieved)

	first := b.Chunks[0]
	require.Equal(t, 1, first.Index)
	require.Equal(t, 6, first.Sentences)
	require.Equal(t, 12, first.Tokens)
	require.Equal(t, len(first.Text), first.Runes)
	require.Equal(t, 1, b.Chunks[2].Sentences)

	preview, err := PreviewChunking(text, DefaultChunkSize)
	require.NoError(t, err)
	require.Equal(t, preview, b.Preview())
}

func TestAnalyze_RetrievalLimit(t *testing.T) {
	text := strings.Repeat("Line\n", 31)

	b, err := Analyze(text)
	require.NoError(t, err)
	require.Len(t, b.Chunks, 6)
	require.True(t, b.ExceedsRetrievalLimit)
	require.Zero(t, b.Chunks[0].Tokens)

	b, err = Analyze(text, WithMaxRetrieved(10))
	require.NoError(t, err)
	require.False(t, b.ExceedsRetrievalLimit)
}

func TestAnalyze_Errors(t *testing.T) {
	_, err := Analyze("Text", WithAnalyzeChunkSize(-1))
	require.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = Analyze("Text", WithMaxRetrieved(-1))
	require.ErrorIs(t, err, ErrInvalidMaxRetrieved)

	boom := errors.New("boom")
	_, err = Analyze("Text", WithTokenCounter(wordCounter{err: boom}))
	require.ErrorIs(t, err, boom)
}
