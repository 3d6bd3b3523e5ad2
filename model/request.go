//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package model

// Role identifies the author of a Message.
type Role string

// Roles understood by chat models.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) String() string { return string(r) }

// Message is one turn of a chat.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage returns instructions for the model.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage returns a user turn.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage returns a model turn.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// GenerationConfig holds optional sampling parameters. Nil fields keep the
// provider defaults.
type GenerationConfig struct {
	// MaxTokens caps the completion length.
	MaxTokens *int `json:"max_tokens,omitempty"`
	// Temperature controls randomness, 0 to 2.
	Temperature *float64 `json:"temperature,omitempty"`
	// Seed asks the provider for repeatable sampling.
	Seed *int64 `json:"seed,omitempty"`
}

// ResponseFormatType selects how the model formats its reply.
type ResponseFormatType string

// Response formats.
const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
)

// ResponseFormat constrains the reply.
type ResponseFormat struct {
	Type ResponseFormatType `json:"type"`
}

// Request is a chat completion request.
type Request struct {
	Messages         []Message `json:"messages"`
	GenerationConfig `json:",inline"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
}
