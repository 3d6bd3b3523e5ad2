//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package grader scores knowledge-base documents for retrieval quality.
// It predicts how the retrieval system will fragment a document, embeds that
// breakdown in a prompt together with the rubric, and asks an Oracle for a
// grade, suggestions and a rewritten version.
package grader

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	itelemetry "github.com/klaviyo/knowledge-grader/internal/telemetry"
	"github.com/klaviyo/knowledge-grader/knowledge/chunking"
	"github.com/klaviyo/knowledge-grader/knowledge/rubric"
	"github.com/klaviyo/knowledge-grader/log"
	imetric "github.com/klaviyo/knowledge-grader/telemetry/metric"
	itrace "github.com/klaviyo/knowledge-grader/telemetry/trace"
)

// DefaultMaxDocumentChars caps the document length accepted for grading.
const DefaultMaxDocumentChars = 50_000

// Request asks for a document to be graded.
type Request struct {
	DocumentText string `json:"documentText"`
	// RubricURL overrides the configured rubric location.
	RubricURL string `json:"rubricUrl,omitempty" validate:"omitempty,url"`
}

// Service grades documents.
type Service struct {
	rubric       rubric.Source
	oracle       Oracle
	validate     *validator.Validate
	chunkSize    int
	maxRetrieved int
	maxChars     int
	rubricURL    string
	tokens       PromptCounter
}

// PromptCounter estimates the tokens a chat prompt costs.
type PromptCounter interface {
	CountChat(contents ...string) (int, error)
}

type options struct {
	chunkSize    int
	maxRetrieved int
	maxChars     int
	rubricURL    string
	validate     *validator.Validate
	tokens       PromptCounter
}

// Option configures a Service.
type Option func(*options)

// WithChunkSize sets the number of sentences per predicted chunk.
func WithChunkSize(size int) Option {
	return func(o *options) {
		o.chunkSize = size
	}
}

// WithMaxRetrieved sets how many chunks the retrieval system returns per query.
func WithMaxRetrieved(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRetrieved = n
		}
	}
}

// WithMaxDocumentChars caps the accepted document length in characters.
func WithMaxDocumentChars(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxChars = n
		}
	}
}

// WithRubricURL sets the rubric used when a request does not name one.
func WithRubricURL(url string) Option {
	return func(o *options) {
		if url != "" {
			o.rubricURL = url
		}
	}
}

// WithValidator shares a validator instance with the caller.
func WithValidator(v *validator.Validate) Option {
	return func(o *options) {
		if v != nil {
			o.validate = v
		}
	}
}

// WithPromptCounter records the estimated prompt size on each oracle call.
func WithPromptCounter(c PromptCounter) Option {
	return func(o *options) {
		o.tokens = c
	}
}

// New creates a Service.
func New(src rubric.Source, oracle Oracle, opts ...Option) (*Service, error) {
	if src == nil {
		return nil, errors.New("grader: rubric source is nil")
	}
	if oracle == nil {
		return nil, errors.New("grader: oracle is nil")
	}
	o := &options{
		chunkSize:    chunking.DefaultChunkSize,
		maxRetrieved: chunking.DefaultMaxRetrieved,
		maxChars:     DefaultMaxDocumentChars,
		rubricURL:    rubric.DefaultURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.chunkSize <= 0 {
		return nil, fmt.Errorf("grader: %w: got %d", chunking.ErrInvalidChunkSize, o.chunkSize)
	}
	if o.validate == nil {
		o.validate = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Service{
		rubric:       src,
		oracle:       oracle,
		validate:     o.validate,
		chunkSize:    o.chunkSize,
		maxRetrieved: o.maxRetrieved,
		maxChars:     o.maxChars,
		rubricURL:    o.rubricURL,
		tokens:       o.tokens,
	}, nil
}

// ChunkSize reports the sentences-per-chunk the Service predicts with.
func (s *Service) ChunkSize() int {
	return s.chunkSize
}

// MaxDocumentChars reports the accepted document length.
func (s *Service) MaxDocumentChars() int {
	return s.maxChars
}

// Validate checks a request without grading it. Failures wrap ErrInvalidInput;
// use ValidationDetails for field level messages.
func (s *Service) Validate(req Request) error {
	var details []string
	if n := utf8.RuneCountInString(req.DocumentText); n > s.maxChars {
		details = append(details, fmt.Sprintf("documentText: Document must be at most %d characters (got %d)", s.maxChars, n))
	}
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		details = append(details, describe(verrs)...)
	}
	if len(details) > 0 {
		return &InputError{Details: details}
	}
	return nil
}

// Grade scores a document. Every call fetches the rubric through the
// configured Source, predicts the chunk breakdown and consults the Oracle once.
func (s *Service) Grade(ctx context.Context, req Request) (result *Result, err error) {
	ctx, span := itrace.Tracer.Start(ctx, itelemetry.SpanNameGradeDocument)
	start := time.Now()

	recordRequest(ctx)
	defer func() {
		defer itrace.End(span, err)
		if err != nil {
			recordFailure(ctx, err)
			log.Errorf("grade document failed after %s: %v", time.Since(start), err)
			return
		}
		itelemetry.TraceGrade(span, result.Grade, len(result.Suggestions))
		recordGrade(ctx, result.Grade)
		log.Infof("graded document: grade=%d suggestions=%d elapsed=%s",
			result.Grade, len(result.Suggestions), time.Since(start))
	}()

	if err := s.Validate(req); err != nil {
		return nil, err
	}

	rubricURL := req.RubricURL
	if rubricURL == "" {
		rubricURL = s.rubricURL
	}
	span.SetAttributes(attribute.String(itelemetry.KeyRubricURL, rubricURL))

	rubricText, err := s.fetchRubric(ctx, rubricURL)
	if err != nil {
		return nil, err
	}

	breakdown, err := chunking.Analyze(req.DocumentText,
		chunking.WithAnalyzeChunkSize(s.chunkSize),
		chunking.WithMaxRetrieved(s.maxRetrieved),
	)
	if err != nil {
		return nil, fmt.Errorf("predict chunks: %w", err)
	}
	itelemetry.TraceChunking(span, utf8.RuneCountInString(req.DocumentText),
		breakdown.SentenceCount, len(breakdown.Chunks), s.chunkSize, s.maxRetrieved)
	recordChunks(ctx, len(breakdown.Chunks))
	log.Debugf("predicted %d chunks from %d sentences", len(breakdown.Chunks), breakdown.SentenceCount)

	prompt, err := BuildPrompt(s.chunkSize, s.maxRetrieved,
		chunking.FormatBreakdown(breakdown.Preview()), rubricText, req.DocumentText)
	if err != nil {
		return nil, err
	}

	reply, err := s.evaluate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseResult(s.validate, reply)
}

func (s *Service) fetchRubric(ctx context.Context, url string) (text string, err error) {
	ctx, span := itrace.Tracer.Start(ctx, itelemetry.SpanNameFetchRubric)
	defer func() { itrace.End(span, err) }()
	text, err = s.rubric.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch rubric: %w", err)
	}
	return text, nil
}

func (s *Service) evaluate(ctx context.Context, prompt Prompt) (reply []byte, err error) {
	ctx, span := itrace.Tracer.Start(ctx, itelemetry.SpanNameCallOracle)
	defer func() { itrace.End(span, err) }()
	if s.tokens != nil {
		if n, cerr := s.tokens.CountChat(prompt.System, prompt.User); cerr == nil {
			itelemetry.TracePrompt(span, n)
			log.Debugf("oracle prompt is about %d tokens", n)
		}
	}
	reply, err = s.oracle.Evaluate(ctx, prompt)
	if err != nil {
		if !errors.Is(err, ErrOracleUnavailable) && !errors.Is(err, ErrMalformedResponse) {
			err = fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
		}
		return nil, err
	}
	if len(reply) == 0 {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	return reply, nil
}

func recordRequest(ctx context.Context) {
	if c, err := imetric.Meter.Int64Counter(itelemetry.MetricGraderRequests,
		metric.WithDescription("Documents submitted for grading")); err == nil {
		c.Add(ctx, 1)
	}
}

func recordFailure(ctx context.Context, err error) {
	c, cerr := imetric.Meter.Int64Counter(itelemetry.MetricGraderFailures,
		metric.WithDescription("Grading calls that did not produce a result"))
	if cerr != nil {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(attribute.String(itelemetry.KeyFailureCause, FailureCause(err))))
}

func recordGrade(ctx context.Context, grade int) {
	if h, err := imetric.Meter.Int64Histogram(itelemetry.MetricGraderGrade,
		metric.WithDescription("Grades returned by the oracle"),
		metric.WithExplicitBucketBoundaries(60, 70, 80, 90, 100)); err == nil {
		h.Record(ctx, int64(grade))
	}
}

func recordChunks(ctx context.Context, chunks int) {
	if h, err := imetric.Meter.Int64Histogram(itelemetry.MetricGraderChunks,
		metric.WithDescription("Predicted chunks per graded document")); err == nil {
		h.Record(ctx, int64(chunks))
	}
}

// FailureCause classifies a Grade error for metrics and logs.
func FailureCause(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, rubric.ErrFetch):
		return "rubric"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrOracleUnavailable):
		return "oracle_unavailable"
	default:
		return "internal"
	}
}
