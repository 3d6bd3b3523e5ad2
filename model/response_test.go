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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Content(t *testing.T) {
	tests := []struct {
		name string
		rsp  *Response
		want string
	}{
		{name: "nil response", rsp: nil, want: ""},
		{name: "no choices", rsp: &Response{}, want: ""},
		{
			name: "first choice wins",
			rsp: &Response{Choices: []Choice{
				{Message: NewAssistantMessage("first")},
				{Index: 1, Message: NewAssistantMessage("second")},
			}},
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rsp.Content())
		})
	}
}

func TestResponse_Truncated(t *testing.T) {
	stop, length := FinishReasonStop, FinishReasonLength
	assert.False(t, (*Response)(nil).Truncated())
	assert.False(t, (&Response{Choices: []Choice{{}}}).Truncated())
	assert.False(t, (&Response{Choices: []Choice{{FinishReason: &stop}}}).Truncated())
	assert.True(t, (&Response{Choices: []Choice{{FinishReason: &length}}}).Truncated())
}

func TestResponseError_Error(t *testing.T) {
	code := "rate_limit_exceeded"
	withCode := &ResponseError{Message: "slow down", Type: ErrorTypeAPIError, Code: &code}
	assert.Equal(t, "api_error (rate_limit_exceeded): slow down", withCode.Error())

	plain := &ResponseError{Message: "boom", Type: ErrorTypeAPIError}
	assert.Equal(t, "api_error: boom", plain.Error())
}
