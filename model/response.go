//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

// ErrorTypeAPIError is used when the provider gave no error type.
const ErrorTypeAPIError = "api_error"

// Finish reasons reported by chat models.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)

// Choice is one candidate reply.
type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
	// FinishReason is nil while a reply is still streaming.
	FinishReason *string `json:"finish_reason,omitempty"`
}

// Usage counts the tokens billed for a call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a reply, or a failure reported after the request was sent.
type Response struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []Choice       `json:"choices"`
	Usage   *Usage         `json:"usage,omitempty"`
	Error   *ResponseError `json:"error,omitempty"`
	// Done marks the last response on the channel.
	Done bool `json:"done"`
}

// Content returns the text of the first choice.
func (rsp *Response) Content() string {
	if rsp == nil || len(rsp.Choices) == 0 {
		return ""
	}
	return rsp.Choices[0].Message.Content
}

// Truncated reports whether the first choice stopped at the token limit.
// A truncated JSON reply cannot be parsed.
func (rsp *Response) Truncated() bool {
	if rsp == nil || len(rsp.Choices) == 0 || rsp.Choices[0].FinishReason == nil {
		return false
	}
	return *rsp.Choices[0].FinishReason == FinishReasonLength
}

// ResponseError is a provider failure.
type ResponseError struct {
	Message string  `json:"message"`
	Type    string  `json:"type"`
	Code    *string `json:"code,omitempty"`
	// StatusCode is the HTTP status, when there was one.
	StatusCode int `json:"status_code,omitempty"`
}

func (e *ResponseError) Error() string {
	if e.Code != nil {
		return e.Type + " (" + *e.Code + "): " + e.Message
	}
	return e.Type + ": " + e.Message
}
