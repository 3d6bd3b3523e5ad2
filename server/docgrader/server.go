//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package docgrader exposes the document grader over HTTP.
//
// Routes:
//
//	POST /api/doc-grader/evaluate   grade a document (rate limited)
//	POST /api/doc-grader/preview    predict the chunk breakdown
//	GET  /health                    liveness probe
package docgrader

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/klaviyo/knowledge-grader/grader"
	"github.com/klaviyo/knowledge-grader/knowledge/chunking"
	"github.com/klaviyo/knowledge-grader/ratelimit"
)

// Route paths.
const (
	PathEvaluate = "/api/doc-grader/evaluate"
	PathPreview  = "/api/doc-grader/preview"
	PathHealth   = "/health"
)

// maxBodyBytes bounds request bodies. A 50,000 character document is at most
// 200,000 bytes of UTF-8 before JSON escaping.
const maxBodyBytes = 1 << 20

// Grader is the part of grader.Service the server depends on.
type Grader interface {
	Grade(ctx context.Context, req grader.Request) (*grader.Result, error)
}

// Server routes HTTP requests to the grader.
type Server struct {
	grader   Grader
	router   *mux.Router
	validate *validator.Validate

	limiter         *ratelimit.Limiter
	counter         chunking.TokenCounter
	chunkSize       int
	maxRetrieved    int
	maxChars        int
	allowedOrigins  []string
	trustForwardFor bool
}

// Option configures the Server instance.
type Option func(*Server)

// WithLimiter rate limits the evaluate endpoint per client IP.
// Without a limiter every request is admitted.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithTokenCounter adds token estimates to preview responses.
func WithTokenCounter(c chunking.TokenCounter) Option {
	return func(s *Server) { s.counter = c }
}

// WithChunkSize sets the preview chunk size used when a request omits one.
func WithChunkSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithMaxRetrieved sets the retrieval limit reported by previews.
func WithMaxRetrieved(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRetrieved = n
		}
	}
}

// WithMaxDocumentChars caps preview documents.
func WithMaxDocumentChars(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxChars = n
		}
	}
}

// WithAllowedOrigins sets the CORS allow list. Defaults to "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithTrustForwardedFor keys the rate limit on X-Forwarded-For / X-Real-IP
// instead of the connection address. Enable only behind a trusted proxy.
func WithTrustForwardedFor(trust bool) Option {
	return func(s *Server) { s.trustForwardFor = trust }
}

// New creates a Server in front of g.
func New(g Grader, opts ...Option) *Server {
	s := &Server{
		grader:         g,
		router:         mux.NewRouter(),
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		chunkSize:      chunking.DefaultChunkSize,
		maxRetrieved:   chunking.DefaultMaxRetrieved,
		maxChars:       grader.DefaultMaxDocumentChars,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Retry-After", headerRequestID,
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})
	s.router.Use(requestIDMiddleware, loggingMiddleware, c.Handler)
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.Handle(PathEvaluate,
		s.rateLimit(http.HandlerFunc(s.handleEvaluate))).Methods(http.MethodPost)
	s.router.HandleFunc(PathPreview, s.handlePreview).Methods(http.MethodPost)
	s.router.HandleFunc(PathHealth, s.handleHealth).Methods(http.MethodGet)

	// Pre-flight requests are answered by the CORS middleware, which only
	// runs once mux has matched a route.
	preflight := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
	s.router.HandleFunc(PathEvaluate, preflight).Methods(http.MethodOptions)
	s.router.HandleFunc(PathPreview, preflight).Methods(http.MethodOptions)
}
