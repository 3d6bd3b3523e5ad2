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
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InputError lists the reasons a request was rejected. It matches
// ErrInvalidInput with errors.Is.
type InputError struct {
	Details []string
}

// Error implements error.
func (e *InputError) Error() string {
	return ErrInvalidInput.Error() + ": " + strings.Join(e.Details, "; ")
}

// Unwrap returns ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationDetails returns the field level messages carried by err, or nil.
func ValidationDetails(err error) []string {
	var ierr *InputError
	if errors.As(err, &ierr) {
		return ierr.Details
	}
	return nil
}

// NewInputError converts a validator.Struct failure into an *InputError.
// Errors that are not validation errors are wrapped with ErrInvalidInput.
func NewInputError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &InputError{Details: describe(verrs)}
}

// describe turns validator errors into messages keyed by JSON field name.
func describe(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s: %s", jsonName(fe.Field()), message(fe)))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func jsonName(field string) string {
	switch field {
	case "DocumentText":
		return "documentText"
	case "RubricURL":
		return "rubricUrl"
	}
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
