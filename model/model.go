//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package model is the chat model abstraction the grader consults. Replies
// are delivered on a channel so an adapter may stream partial responses or
// answer in one piece.
package model

import (
	"context"
	"errors"
)

// ErrNoResponse is returned by Collect when the channel closes before any
// response arrives.
var ErrNoResponse = errors.New("model: no response")

// Model generates chat completions.
//
// GenerateContent fails only when the request cannot be sent at all. Any
// later failure arrives as a Response with Error set. The channel is closed
// after the response marked Done.
type Model interface {
	GenerateContent(ctx context.Context, request *Request) (<-chan *Response, error)
	Info() Info
}

// Info describes a Model.
type Info struct {
	Name string
}

// Collect drains responses and returns the final one. A response carrying
// an Error is returned as that error.
func Collect(ctx context.Context, responses <-chan *Response) (*Response, error) {
	var last *Response
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case rsp, ok := <-responses:
			if !ok {
				if last != nil {
					return last, nil
				}
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return nil, ErrNoResponse
			}
			if rsp == nil {
				continue
			}
			if rsp.Error != nil {
				return nil, rsp.Error
			}
			last = rsp
			if rsp.Done {
				return rsp, nil
			}
		}
	}
}
