//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package chunking predicts how the downstream retrieval system fragments a
// knowledge-base document: it splits text into sentences and groups them into
// fixed-size chunks exactly the way the retrieval side does.
package chunking

import (
	"fmt"
	"maps"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/klaviyo/knowledge-grader/knowledge/document"
)

const (
	// DefaultChunkSize is the number of sentences the retrieval system stores
	// per chunk.
	DefaultChunkSize = 6

	// DefaultMaxRetrieved is the number of chunks the retrieval system returns
	// for a single query.
	DefaultMaxRetrieved = 5
)

// Chunk metadata keys.
const (
	MetaChunkIndex     = "chunk_index"
	MetaChunkSentences = "chunk_sentences"
	MetaChunkSize      = "chunk_size"
	MetaParentID       = "parent_id"
)

// Strategy defines the interface for document chunking strategies.
type Strategy interface {
	// Chunk splits a document into smaller chunks based on the strategy's algorithm.
	Chunk(doc *document.Document) ([]*document.Document, error)
}

// ChunkSentences partitions sentences into consecutive groups of exactly
// chunkSize elements. The last group holds the remainder. No sentence is
// duplicated or dropped and the returned slices share the input's backing
// array.
func ChunkSentences(sentences []string, chunkSize int) ([][]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}
	chunks := make([][]string, 0, (len(sentences)+chunkSize-1)/chunkSize)
	for start := 0; start < len(sentences); start += chunkSize {
		end := min(start+chunkSize, len(sentences))
		chunks = append(chunks, sentences[start:end:end])
	}
	return chunks, nil
}

// createChunk derives chunk number n of parent. Parent metadata is copied and
// extended with the chunk position and size.
func createChunk(parent *document.Document, content string, n, sentences int) *document.Document {
	metadata := maps.Clone(parent.Metadata)
	if metadata == nil {
		metadata = make(map[string]any, 4)
	}
	metadata[MetaChunkIndex] = n
	metadata[MetaChunkSentences] = sentences
	metadata[MetaChunkSize] = utf8.RuneCountInString(content)

	prefix := "chunk"
	switch {
	case parent.ID != "":
		prefix = parent.ID
		metadata[MetaParentID] = parent.ID
	case parent.Name != "":
		prefix = parent.Name
	}
	return &document.Document{
		ID:        prefix + "_" + strconv.Itoa(n),
		Name:      parent.Name,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}
