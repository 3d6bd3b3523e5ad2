//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package tiktoken counts OpenAI tokens for chunks and grading prompts.
package tiktoken

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// Chat framing overhead used by OpenAI for gpt-4 family models: every message
// costs a few tokens for its role and delimiters, and every reply is primed
// with three more.
const (
	tokensPerMessage = 3
	replyPriming     = 3
)

// Counter counts tokens with the encoding of one model.
type Counter struct {
	codec tokenizer.Codec
}

// New picks the encoding for modelName. Unknown models use o200k_base, the
// encoding of the gpt-4o and gpt-4.1 families.
func New(modelName string) (*Counter, error) {
	codec, err := tokenizer.ForModel(tokenizer.Model(modelName))
	if err == nil {
		return &Counter{codec: codec}, nil
	}
	codec, err = tokenizer.Get(tokenizer.O200kBase)
	if err != nil {
		return nil, fmt.Errorf("tiktoken: load %s: %w", tokenizer.O200kBase, err)
	}
	return &Counter{codec: codec}, nil
}

// Encoding names the encoding in use.
func (c *Counter) Encoding() string {
	return c.codec.GetName()
}

// CountText returns the number of tokens in text.
func (c *Counter) CountText(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("tiktoken: encode: %w", err)
	}
	return len(ids), nil
}

// CountChat estimates the prompt tokens billed for a chat request made of
// the given message contents.
func (c *Counter) CountChat(contents ...string) (int, error) {
	total := replyPriming
	for _, content := range contents {
		n, err := c.CountText(content)
		if err != nil {
			return 0, err
		}
		total += tokensPerMessage + n
	}
	return total, nil
}
