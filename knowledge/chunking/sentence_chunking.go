//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import (
	"strings"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
)

// SentenceChunking implements the retrieval system's chunking strategy:
// sentence splitting followed by fixed-size, non-overlapping grouping.
type SentenceChunking struct {
	chunkSize int
}

// Option represents a functional option for configuring SentenceChunking.
type Option func(*SentenceChunking)

// WithChunkSize sets the number of sentences per chunk.
func WithChunkSize(size int) Option {
	return func(sc *SentenceChunking) {
		sc.chunkSize = size
	}
}

// NewSentenceChunking creates a new sentence chunking strategy with options.
func NewSentenceChunking(opts ...Option) *SentenceChunking {
	sc := &SentenceChunking{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// ChunkSize returns the configured number of sentences per chunk.
func (s *SentenceChunking) ChunkSize() int {
	return s.chunkSize
}

// Split returns the document text grouped into chunks of sentences.
func (s *SentenceChunking) Split(text string) ([][]string, error) {
	return ChunkSentences(SplitSentences(text), s.chunkSize)
}

// Chunk splits the document into chunk documents, one per sentence group.
func (s *SentenceChunking) Chunk(doc *document.Document) ([]*document.Document, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if doc.IsEmpty() {
		return nil, ErrEmptyDocument
	}

	groups, err := s.Split(doc.Content)
	if err != nil {
		return nil, err
	}
	chunks := make([]*document.Document, 0, len(groups))
	for i, group := range groups {
		chunks = append(chunks, createChunk(doc, strings.Join(group, "\n"), i+1, len(group)))
	}
	return chunks, nil
}
