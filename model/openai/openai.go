//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package openai adapts the OpenAI chat completions API to model.Model.
package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/klaviyo/knowledge-grader/log"
	"github.com/klaviyo/knowledge-grader/model"
)

// ErrNilRequest is returned by GenerateContent for a nil request.
var ErrNilRequest = errors.New("openai: nil request")

// Model calls the chat completions endpoint once per request and delivers a
// single Done response.
type Model struct {
	client       openai.Client
	name         string
	baseURL      string
	apiKey       string
	organization string
	maxRetries   int
}

type options struct {
	apiKey       string
	baseURL      string
	organization string
	httpClient   *http.Client
	timeout      time.Duration
	maxRetries   int
	extra        []openaiopt.RequestOption
}

// Option configures a Model.
type Option func(*options)

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithOrganization sends the OpenAI-Organization header.
func WithOrganization(org string) Option {
	return func(o *options) { o.organization = org }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout bounds each call, including the time spent generating.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxRetries lets the client retry throttled and failed calls. The
// default is 0: failures are reported to the caller at once.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = max(n, 0) }
}

// WithOpenAIOptions passes extra options to the underlying client, e.g.
// openaiopt.WithMiddleware.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) { o.extra = append(o.extra, opts...) }
}

// New creates a Model for the named chat model.
func New(name string, opts ...Option) *Model {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	clientOpts := []openaiopt.RequestOption{openaiopt.WithMaxRetries(o.maxRetries)}
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	if o.organization != "" {
		clientOpts = append(clientOpts, openaiopt.WithOrganization(o.organization))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.httpClient))
	}
	if o.timeout > 0 {
		clientOpts = append(clientOpts, openaiopt.WithRequestTimeout(o.timeout))
	}
	clientOpts = append(clientOpts, o.extra...)

	return &Model{
		client:       openai.NewClient(clientOpts...),
		name:         name,
		baseURL:      o.baseURL,
		apiKey:       o.apiKey,
		organization: o.organization,
		maxRetries:   o.maxRetries,
	}
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name}
}

// GenerateContent implements model.Model.
func (m *Model) GenerateContent(ctx context.Context, request *model.Request) (<-chan *model.Response, error) {
	if request == nil {
		return nil, ErrNilRequest
	}
	params := m.buildChatRequest(request)
	responses := make(chan *model.Response, 1)
	go func() {
		defer close(responses)
		rsp := m.complete(ctx, params)
		select {
		case responses <- rsp:
		case <-ctx.Done():
		}
	}()
	return responses, nil
}

func (m *Model) buildChatRequest(request *model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.name),
		Messages: convertMessages(request.Messages),
	}
	if rf := request.ResponseFormat; rf != nil {
		switch rf.Type {
		case model.ResponseFormatJSONObject:
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		case model.ResponseFormatText:
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfText: &shared.ResponseFormatTextParam{},
			}
		}
	}
	// max_tokens is rejected by reasoning models; max_completion_tokens is not.
	if request.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*request.MaxTokens))
	}
	if request.Temperature != nil {
		params.Temperature = openai.Float(*request.Temperature)
	}
	if request.Seed != nil {
		params.Seed = openai.Int(*request.Seed)
	}
	return params
}

func convertMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out[i] = openai.SystemMessage(msg.Content)
		case model.RoleAssistant:
			out[i] = openai.AssistantMessage(msg.Content)
		default:
			out[i] = openai.UserMessage(msg.Content)
		}
	}
	return out
}

func (m *Model) complete(ctx context.Context, params openai.ChatCompletionNewParams) *model.Response {
	start := time.Now()
	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Debugf("openai %s failed after %s: %v", m.name, time.Since(start), err)
		return &model.Response{Model: m.name, Error: responseError(err), Done: true}
	}

	rsp := &model.Response{
		ID:      completion.ID,
		Model:   completion.Model,
		Choices: make([]model.Choice, len(completion.Choices)),
		Done:    true,
	}
	for i, c := range completion.Choices {
		rsp.Choices[i] = model.Choice{
			Index:   int(c.Index),
			Message: model.NewAssistantMessage(c.Message.Content),
		}
		if c.FinishReason != "" {
			reason := c.FinishReason
			rsp.Choices[i].FinishReason = &reason
		}
	}
	if u := completion.Usage; u.TotalTokens > 0 {
		rsp.Usage = &model.Usage{
			PromptTokens:     int(u.PromptTokens),
			CompletionTokens: int(u.CompletionTokens),
			TotalTokens:      int(u.TotalTokens),
		}
		log.Debugf("openai %s: %d prompt + %d completion tokens in %s",
			completion.Model, u.PromptTokens, u.CompletionTokens, time.Since(start))
	}
	return rsp
}

// responseError keeps the API's error type and code when the server
// answered, so callers can tell quota problems from bad requests.
func responseError(err error) *model.ResponseError {
	rerr := &model.ResponseError{Message: err.Error(), Type: model.ErrorTypeAPIError}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		rerr.StatusCode = apiErr.StatusCode
		if apiErr.Type != "" {
			rerr.Type = apiErr.Type
		}
		if apiErr.Code != "" {
			code := apiErr.Code
			rerr.Code = &code
		}
	}
	return rerr
}
