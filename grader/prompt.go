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
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	systemTemplate = mustParse("system.tmpl")
	userTemplate   = mustParse("user.tmpl")
)

func mustParse(name string) *template.Template {
	src, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("grader: read template %s: %v", name, err))
	}
	// The trailing newline of the file is not part of the prompt.
	return template.Must(template.New(name).Option("missingkey=error").
		Parse(strings.TrimSuffix(string(src), "\n")))
}

// Prompt is the pair of messages sent to the oracle.
type Prompt struct {
	System string
	User   string
}

// promptData feeds the prompt templates.
type promptData struct {
	ChunkSize    int
	HeaderBudget int
	MaxRetrieved int
	SpanWarning  int
	Breakdown    string
	Rubric       string
	Document     string
}

// BuildPrompt renders the evaluation prompt for a document whose chunk
// breakdown has already been formatted.
func BuildPrompt(chunkSize, maxRetrieved int, breakdown, rubricText, documentText string) (Prompt, error) {
	data := promptData{
		ChunkSize:    chunkSize,
		HeaderBudget: chunkSize - 1,
		MaxRetrieved: maxRetrieved,
		SpanWarning:  maxRetrieved * 2,
		Breakdown:    breakdown,
		Rubric:       rubricText,
		Document:     documentText,
	}

	var system, user strings.Builder
	if err := systemTemplate.Execute(&system, data); err != nil {
		return Prompt{}, fmt.Errorf("render system prompt: %w", err)
	}
	if err := userTemplate.Execute(&user, data); err != nil {
		return Prompt{}, fmt.Errorf("render user prompt: %w", err)
	}
	return Prompt{System: system.String(), User: user.String()}, nil
}
