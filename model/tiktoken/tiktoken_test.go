//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package tiktoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klaviyo/knowledge-grader/knowledge/chunking"
)

func newCounter(t *testing.T, modelName string) *Counter {
	t.Helper()
	c, err := New(modelName)
	require.NoError(t, err)
	return c
}

func TestCounter_CountText(t *testing.T) {
	tests := []struct {
		name  string
		model string
		text  string
		zero  bool
	}{
		{name: "known model", model: "gpt-4o", text: "Free shipping on orders over $50."},
		{name: "unknown model", model: "shipping-bot-xyz", text: "alpha beta gamma"},
		{name: "empty text", model: "gpt-4o", text: "", zero: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := newCounter(t, tt.model).CountText(tt.text)
			require.NoError(t, err)
			if tt.zero {
				assert.Zero(t, n)
				return
			}
			assert.Positive(t, n)
			assert.LessOrEqual(t, n, len(tt.text))
		})
	}
}

func TestNew_FallbackEncoding(t *testing.T) {
	assert.Equal(t, "o200k_base", newCounter(t, "shipping-bot-xyz").Encoding())
}

func TestCounter_CountChat(t *testing.T) {
	c := newCounter(t, "gpt-4o")
	system, err := c.CountText("You grade help articles.")
	require.NoError(t, err)
	user, err := c.CountText("Cost is $15.99.")
	require.NoError(t, err)

	total, err := c.CountChat("You grade help articles.", "Cost is $15.99.")
	require.NoError(t, err)
	assert.Equal(t, system+user+2*tokensPerMessage+replyPriming, total)

	empty, err := c.CountChat()
	require.NoError(t, err)
	assert.Equal(t, replyPriming, empty)
}

func TestCounter_ChunkTokens(t *testing.T) {
	var tc chunking.TokenCounter = newCounter(t, "gpt-4o")
	b, err := chunking.Analyze("Ground Shipping\nCost is $15.99.", chunking.WithTokenCounter(tc))
	require.NoError(t, err)
	require.Len(t, b.Chunks, 1)
	assert.Positive(t, b.Chunks[0].Tokens)
}
