//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package grader

import "errors"

var (
	// ErrInvalidInput is returned when a grading request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOracleUnavailable is returned when the scoring oracle could not be reached
	// or rejected the call.
	ErrOracleUnavailable = errors.New("oracle unavailable")
	// ErrMalformedResponse is returned when the oracle reply is absent or does not
	// have the expected shape.
	ErrMalformedResponse = errors.New("malformed oracle response")
)
