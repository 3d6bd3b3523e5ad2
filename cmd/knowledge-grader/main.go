//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Command knowledge-grader grades knowledge-base articles for AI retrieval.
package main

import "github.com/klaviyo/knowledge-grader/internal/cli"

func main() {
	cli.Execute()
}
