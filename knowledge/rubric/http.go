//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package rubric

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-resty/resty/v2"

	"github.com/klaviyo/knowledge-grader/log"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetryCount = 2
	userAgent         = "knowledge-grader/1.0"
)

// HTTPSource fetches the rubric page over HTTP.
type HTTPSource struct {
	client      *resty.Client
	convertHTML bool
}

type httpOptions struct {
	timeout     time.Duration
	retryCount  int
	retryWait   time.Duration
	convertHTML bool
	transport   http.RoundTripper
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*httpOptions)

// WithTimeout bounds each fetch attempt.
func WithTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRetryCount sets how many times a failed fetch is retried.
func WithRetryCount(n int) HTTPOption {
	return func(o *httpOptions) {
		if n >= 0 {
			o.retryCount = n
		}
	}
}

// WithRetryWait sets the initial wait between retries.
func WithRetryWait(d time.Duration) HTTPOption {
	return func(o *httpOptions) {
		o.retryWait = d
	}
}

// WithConvertHTML controls whether HTML pages are converted to markdown
// before being placed in the prompt. Enabled by default.
func WithConvertHTML(convert bool) HTTPOption {
	return func(o *httpOptions) {
		o.convertHTML = convert
	}
}

// WithTransport overrides the HTTP transport.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(o *httpOptions) {
		o.transport = rt
	}
}

// NewHTTPSource creates an HTTPSource.
func NewHTTPSource(opts ...HTTPOption) *HTTPSource {
	o := &httpOptions{
		timeout:     defaultTimeout,
		retryCount:  defaultRetryCount,
		retryWait:   200 * time.Millisecond,
		convertHTML: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	client := resty.New().
		SetTimeout(o.timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html, text/plain;q=0.9, */*;q=0.5").
		SetRetryCount(o.retryCount).
		SetRetryWaitTime(o.retryWait).
		SetRetryMaxWaitTime(2 * time.Second)
	if o.transport != nil {
		client.SetTransport(o.transport)
	}
	client.AddRetryCondition(retryCondition)

	return &HTTPSource{client: client, convertHTML: o.convertHTML}
}

// retryCondition retries network errors and server-side failures.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", ErrFetch, url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: get %s: status %d", ErrFetch, url, resp.StatusCode())
	}

	body := resp.String()
	if s.convertHTML && isHTML(resp.Header().Get("Content-Type"), body) {
		md, err := htmltomarkdown.ConvertString(body)
		if err != nil {
			log.Warnf("rubric: html conversion failed for %s, using raw body: %v", url, err)
		} else {
			body = md
		}
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", fmt.Errorf("%w: get %s: empty body", ErrFetch, url)
	}
	log.Debugf("rubric: fetched %s (%d bytes)", url, len(body))
	return body, nil
}

func isHTML(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(body))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
