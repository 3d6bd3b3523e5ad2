//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package docgrader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/klaviyo/knowledge-grader/grader"
	"github.com/klaviyo/knowledge-grader/knowledge/chunking"
	"github.com/klaviyo/knowledge-grader/log"
)

// Response messages.
const (
	msgInvalidRequest  = "Invalid request"
	msgTooManyRequests = "Too many requests"
	msgGradeFailed     = "Failed to grade document"
	msgPreviewFailed   = "Failed to preview document"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// evaluateRequest carries only the document. The rubric location is server
// configuration; a rubricUrl field in the body is ignored.
type evaluateRequest struct {
	DocumentText *string `json:"documentText" validate:"required"`
}

type previewRequest struct {
	DocumentText *string `json:"documentText" validate:"required"`
	ChunkSize    *int    `json:"chunkSize" validate:"omitempty,min=1,max=100"`
}

// PreviewResponse is the chunk breakdown returned by the preview endpoint.
type PreviewResponse struct {
	*chunking.Breakdown
	Characters  int `json:"characters"`
	TotalTokens int `json:"totalTokens,omitempty"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var body evaluateRequest
	if err := s.decode(w, r, &body); err != nil {
		writeInputError(w, err)
		return
	}
	result, err := s.grader.Grade(r.Context(), grader.Request{DocumentText: *body.DocumentText})
	if err != nil {
		if errors.Is(err, grader.ErrInvalidInput) {
			writeInputError(w, err)
			return
		}
		log.Errorf("request %s: grade document: %v", RequestID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgGradeFailed})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var body previewRequest
	if err := s.decode(w, r, &body); err != nil {
		writeInputError(w, err)
		return
	}
	text := *body.DocumentText
	if n := utf8.RuneCountInString(text); n > s.maxChars {
		writeInputError(w, &grader.InputError{Details: []string{
			fmt.Sprintf("documentText: Document must be at most %d characters (got %d)", s.maxChars, n),
		}})
		return
	}
	chunkSize := s.chunkSize
	if body.ChunkSize != nil {
		chunkSize = *body.ChunkSize
	}

	opts := []chunking.AnalyzeOption{
		chunking.WithAnalyzeChunkSize(chunkSize),
		chunking.WithMaxRetrieved(s.maxRetrieved),
	}
	if s.counter != nil {
		opts = append(opts, chunking.WithTokenCounter(s.counter))
	}
	breakdown, err := chunking.Analyze(text, opts...)
	if err != nil {
		log.Errorf("request %s: preview document: %v", RequestID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgPreviewFailed})
		return
	}

	resp := PreviewResponse{Breakdown: breakdown, Characters: utf8.RuneCountInString(text)}
	for _, c := range breakdown.Chunks {
		resp.TotalTokens += c.Tokens
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "OK")
}

// decode reads a JSON body into dst and validates it. Failures are
// grader.ErrInvalidInput.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &grader.InputError{Details: []string{
				fmt.Sprintf("body: must be at most %d bytes", maxErr.Limit),
			}}
		case errors.Is(err, io.EOF):
			return &grader.InputError{Details: []string{"body: is required"}}
		default:
			return &grader.InputError{Details: []string{"body: " + err.Error()}}
		}
	}
	return grader.NewInputError(s.validate.Struct(dst))
}

func writeInputError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   msgInvalidRequest,
		Details: grader.ValidationDetails(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
