//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(responses ...*Response) <-chan *Response {
	ch := make(chan *Response, len(responses))
	for _, r := range responses {
		ch <- r
	}
	close(ch)
	return ch
}

func reply(content string, done bool) *Response {
	return &Response{Choices: []Choice{{Message: NewAssistantMessage(content)}}, Done: done}
}

func TestCollect(t *testing.T) {
	ctx := context.Background()

	rsp, err := Collect(ctx, feed(nil, reply("partial", false), reply(`{"grade": 70}`, true), reply("ignored", true)))
	require.NoError(t, err)
	assert.Equal(t, `{"grade": 70}`, rsp.Content())

	rsp, err = Collect(ctx, feed(reply("last without done", false)))
	require.NoError(t, err)
	assert.Equal(t, "last without done", rsp.Content())
}

func TestCollect_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Collect(ctx, feed())
	require.ErrorIs(t, err, ErrNoResponse)

	apiErr := &ResponseError{Message: "quota exceeded", Type: "insufficient_quota", StatusCode: 429}
	_, err = Collect(ctx, feed(&Response{Error: apiErr, Done: true}))
	var got *ResponseError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, 429, got.StatusCode)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Collect(canceled, make(chan *Response))
	require.ErrorIs(t, err, context.Canceled)
}
