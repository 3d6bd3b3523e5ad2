//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads service settings from defaults, an optional YAML file,
// a .env file and the environment (prefix KG_).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/klaviyo/knowledge-grader/knowledge/chunking"
	"github.com/klaviyo/knowledge-grader/knowledge/rubric"
	"github.com/klaviyo/knowledge-grader/log"
	"github.com/klaviyo/knowledge-grader/ratelimit"
)

// EnvPrefix prefixes every environment override, e.g. KG_SERVER_ADDR.
const EnvPrefix = "KG"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the application configuration.
type Config struct {
	Server struct {
		Addr           string        `mapstructure:"addr"`
		ReadTimeout    time.Duration `mapstructure:"read_timeout"`
		WriteTimeout   time.Duration `mapstructure:"write_timeout"`
		AllowedOrigins []string      `mapstructure:"allowed_origins"`
	} `mapstructure:"server"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Chunking struct {
		Size         int `mapstructure:"size"`
		MaxRetrieved int `mapstructure:"max_retrieved"`
	} `mapstructure:"chunking"`
	OpenAI struct {
		APIKey       string        `mapstructure:"api_key"`
		Organization string        `mapstructure:"organization"`
		BaseURL      string        `mapstructure:"base_url"`
		Model        string        `mapstructure:"model"`
		Timeout      time.Duration `mapstructure:"timeout"`
		MaxRetries   int           `mapstructure:"max_retries"`
	} `mapstructure:"openai"`
	Rubric struct {
		URL         string        `mapstructure:"url"`
		TTL         time.Duration `mapstructure:"ttl"`
		ConvertHTML bool          `mapstructure:"convert_html"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"rubric"`
	RateLimit struct {
		Enabled  bool          `mapstructure:"enabled"`
		Limit    int64         `mapstructure:"limit"`
		Period   time.Duration `mapstructure:"period"`
		RedisURL string        `mapstructure:"redis_url"`
		Prefix   string        `mapstructure:"prefix"`
	} `mapstructure:"ratelimit"`
	Telemetry struct {
		Enabled  bool   `mapstructure:"enabled"`
		Endpoint string `mapstructure:"endpoint"`
		Protocol string `mapstructure:"protocol"`
	} `mapstructure:"telemetry"`
	Document struct {
		MaxChars int `mapstructure:"max_chars"`
	} `mapstructure:"document"`
}

// directEnv lists variables honoured without the KG_ prefix.
var directEnv = map[string]string{
	"openai.api_key":      "OPENAI_API_KEY",
	"openai.organization": "OPENAI_ORGANIZATION",
	"openai.base_url":     "OPENAI_BASE_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("chunking.size", chunking.DefaultChunkSize)
	v.SetDefault("chunking.max_retrieved", chunking.DefaultMaxRetrieved)
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.organization", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4.1-2025-04-14")
	v.SetDefault("openai.timeout", 0)
	v.SetDefault("openai.max_retries", 0)
	v.SetDefault("rubric.url", rubric.DefaultURL)
	v.SetDefault("rubric.ttl", rubric.DefaultTTL)
	v.SetDefault("rubric.convert_html", true)
	v.SetDefault("rubric.timeout", 10*time.Second)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.limit", ratelimit.DefaultLimit)
	v.SetDefault("ratelimit.period", ratelimit.DefaultPeriod)
	v.SetDefault("ratelimit.redis_url", "")
	v.SetDefault("ratelimit.prefix", ratelimit.DefaultPrefix)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.protocol", "grpc")
	v.SetDefault("document.max_chars", 50_000)
}

type loadOptions struct {
	file    string
	envFile string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithFile reads settings from a YAML file. A missing file is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.file = path
	}
}

// WithEnvFile loads a dotenv file before reading the environment. A missing
// file is ignored. Variables already set in the environment win.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// Load builds a Config from defaults, file and environment, in increasing
// order of precedence.
func Load(opts ...LoadOption) (*Config, error) {
	o := &loadOptions{envFile: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", o.envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range directEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if o.file != "" {
		v.SetConfigFile(o.file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", o.file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunking.Size <= 0 {
		errs = append(errs, fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size))
	}
	if c.Chunking.MaxRetrieved <= 0 {
		errs = append(errs, fmt.Errorf("chunking.max_retrieved must be positive, got %d", c.Chunking.MaxRetrieved))
	}
	if c.Document.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("document.max_chars must be positive, got %d", c.Document.MaxChars))
	}
	if c.OpenAI.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("openai.max_retries must not be negative, got %d", c.OpenAI.MaxRetries))
	}
	if c.RateLimit.Enabled {
		rc := ratelimit.RateConfig{Limit: c.RateLimit.Limit, Period: c.RateLimit.Period}
		if err := rc.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("ratelimit: %w", err))
		}
	}
	if c.Rubric.URL == "" {
		errs = append(errs, errors.New("rubric.url is required"))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case log.FormatConsole, log.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}
	switch c.Telemetry.Protocol {
	case "grpc", "http":
	default:
		errs = append(errs, fmt.Errorf("telemetry.protocol must be grpc or http, got %q", c.Telemetry.Protocol))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RequireOpenAI reports whether the settings needed to call the oracle are present.
func (c *Config) RequireOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: missing OpenAI API key (set OPENAI_API_KEY or %s_OPENAI_API_KEY)",
			ErrInvalidConfig, EnvPrefix)
	}
	return nil
}
