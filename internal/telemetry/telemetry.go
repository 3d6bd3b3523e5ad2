//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package telemetry holds the names and helpers shared by the tracing and
// metrics packages.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// telemetry service constants.
const (
	ServiceName      = "knowledge-grader"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "klaviyo"
	InstrumentName   = "github.com/klaviyo/knowledge-grader"

	SpanNameGradeDocument = "grade_document"
	SpanNameFetchRubric   = "fetch_rubric"
	SpanNameCallOracle    = "call_oracle"
)

const (
	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC string = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP string = "http"
)

// Metric instrument names.
const (
	MetricGraderRequests    = "grader.requests"
	MetricGraderFailures    = "grader.failures"
	MetricGraderGrade       = "grader.grade"
	MetricGraderChunks      = "grader.chunks"
	MetricServerRateLimited = "server.rate_limited"
)

// telemetry attributes constants.
var (
	KeyDocumentChars  = "knowledge_grader.document.chars"
	KeySentenceCount  = "knowledge_grader.document.sentences"
	KeyChunkCount     = "knowledge_grader.document.chunks"
	KeyChunkSize      = "knowledge_grader.chunk_size"
	KeyRetrievalLimit = "knowledge_grader.retrieval_limit_exceeded"
	KeyRubricURL      = "knowledge_grader.rubric.url"
	KeyGrade          = "knowledge_grader.grade"
	KeySuggestions    = "knowledge_grader.suggestions"
	KeyPromptTokens   = "knowledge_grader.prompt.tokens"
	KeyFailureCause   = "cause"
)

// TraceChunking records the predicted fragmentation of a document on span.
func TraceChunking(span trace.Span, chars, sentences, chunks, chunkSize, maxRetrieved int) {
	span.SetAttributes(
		attribute.Int(KeyDocumentChars, chars),
		attribute.Int(KeySentenceCount, sentences),
		attribute.Int(KeyChunkCount, chunks),
		attribute.Int(KeyChunkSize, chunkSize),
		attribute.Bool(KeyRetrievalLimit, chunks > maxRetrieved),
	)
}

// TracePrompt records the estimated prompt size of an oracle call.
func TracePrompt(span trace.Span, tokens int) {
	span.SetAttributes(attribute.Int(KeyPromptTokens, tokens))
}

// TraceGrade records the outcome of a grading call on span.
func TraceGrade(span trace.Span, grade, suggestions int) {
	span.SetAttributes(
		attribute.Int(KeyGrade, grade),
		attribute.Int(KeySuggestions, suggestions),
	)
}
