//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package chunking

import "errors"

// Chunking errors. ErrInvalidChunkSize and ErrInvalidMaxRetrieved signal a
// misconfigured caller, never bad document content.
var (
	ErrInvalidChunkSize    = errors.New("chunking: chunk size must be positive")
	ErrInvalidMaxRetrieved = errors.New("chunking: retrieval limit must not be negative")
	ErrEmptyDocument       = errors.New("chunking: document has no text")
	ErrNilDocument         = errors.New("chunking: nil document")
)
