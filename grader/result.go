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
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// Suggestion is one improvement proposed by the oracle.
type Suggestion struct {
	Category string `json:"category"`
	Issue    string `json:"issue"`
	Fix      string `json:"fix"`
}

// Result is the outcome of grading a document.
type Result struct {
	Grade             int          `json:"grade"`
	Suggestions       []Suggestion `json:"suggestions"`
	RewrittenDocument string       `json:"rewrittenDocument"`
}

// Band returns the quality band the grade falls in.
func (r *Result) Band() Band {
	return BandFor(r.Grade)
}

// rawResult mirrors Result with pointers so absent fields can be told apart
// from zero values.
type rawResult struct {
	Grade             *float64        `json:"grade" validate:"required,min=0,max=100"`
	Suggestions       []rawSuggestion `json:"suggestions" validate:"required,dive"`
	RewrittenDocument *string         `json:"rewrittenDocument" validate:"required"`
}

type rawSuggestion struct {
	Category *string `json:"category" validate:"required"`
	Issue    *string `json:"issue" validate:"required"`
	Fix      *string `json:"fix" validate:"required"`
}

// ParseResult decodes and validates an oracle reply.
func ParseResult(v *validator.Validate, data []byte) (*Result, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if err := v.Struct(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if g := *raw.Grade; g != math.Trunc(g) {
		return nil, fmt.Errorf("%w: grade %v is not an integer", ErrMalformedResponse, g)
	}

	result := &Result{
		Grade:             int(*raw.Grade),
		Suggestions:       make([]Suggestion, 0, len(raw.Suggestions)),
		RewrittenDocument: *raw.RewrittenDocument,
	}
	for _, s := range raw.Suggestions {
		result.Suggestions = append(result.Suggestions, Suggestion{
			Category: *s.Category,
			Issue:    *s.Issue,
			Fix:      *s.Fix,
		})
	}
	return result, nil
}
