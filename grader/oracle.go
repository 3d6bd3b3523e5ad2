//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package grader

import (
	"context"
	"errors"
	"fmt"

	"github.com/klaviyo/knowledge-grader/model"
)

// DefaultModel is the chat model used for grading.
const DefaultModel = "gpt-4.1-2025-04-14"

// Oracle scores a prompt and returns the raw JSON reply.
type Oracle interface {
	Evaluate(ctx context.Context, prompt Prompt) ([]byte, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, prompt Prompt) ([]byte, error)

// Evaluate implements Oracle.
func (f OracleFunc) Evaluate(ctx context.Context, prompt Prompt) ([]byte, error) {
	return f(ctx, prompt)
}

// ModelOracle asks a chat model for a JSON object.
type ModelOracle struct {
	model model.Model
}

// NewModelOracle creates an Oracle backed by m.
func NewModelOracle(m model.Model) *ModelOracle {
	return &ModelOracle{model: m}
}

// Evaluate implements Oracle.
func (o *ModelOracle) Evaluate(ctx context.Context, prompt Prompt) ([]byte, error) {
	req := &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage(prompt.System),
			model.NewUserMessage(prompt.User),
		},
		ResponseFormat: &model.ResponseFormat{Type: model.ResponseFormatJSONObject},
	}

	responses, err := o.model.GenerateContent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}

	rsp, err := model.Collect(ctx, responses)
	switch {
	case errors.Is(err, model.ErrNoResponse):
		return nil, fmt.Errorf("%w: no response from %s", ErrMalformedResponse, o.model.Info().Name)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	case rsp.Truncated():
		return nil, fmt.Errorf("%w: reply from %s hit the token limit", ErrMalformedResponse, o.model.Info().Name)
	}
	content := rsp.Content()
	if content == "" {
		return nil, fmt.Errorf("%w: empty reply from %s", ErrMalformedResponse, o.model.Info().Name)
	}
	return []byte(content), nil
}
