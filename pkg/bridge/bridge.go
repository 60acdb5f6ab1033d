// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🤖 Models and defaults
const (
	ModelFlash = "gemini-2.0-flash"
	ModelPro   = "gemini-2.5-pro"

	DefaultModel       = ModelFlash
	DefaultMaxTokens   = 4096
	DefaultTemperature = float32(0.4)

	Origin = "gemini_hybrid"
)

// SupportedModels are the only models a request may name. Anything else
// falls back to DefaultModel.
var SupportedModels = []string{ModelFlash, ModelPro}

// Response statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Model selection reasons
const (
	ReasonFlashDefault  = "flash_default"
	ReasonProEscalation = "pro_escalation"
)

var (
	ErrMissingCredential = errors.Base("Missing or invalid Gemini API key.")
	ErrInvalidPrompt     = errors.Base("Invalid or missing prompt.")
	ErrEmptyResponse     = errors.Base("Gemini returned empty response.")
)

// 📦 Context is what the caller knows about the task
type Context struct {
	TaskType string `json:"task_type,omitempty"`
	Attempts int    `json:"attempts,omitempty"`
	Depth    string `json:"depth,omitempty"`
}

func (c *Context) provided() bool {
	return c != nil && *c != (Context{})
}

// 📦 Request is one call into the bridge. Zero values take the defaults.
type Request struct {
	Credential  string   `json:"-"`
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	Context     *Context `json:"context,omitempty"`
}

// 📦 Metadata describes how a response was produced
type Metadata struct {
	RequestID            string `json:"request_id"`
	ModelUsed            string `json:"model_used,omitempty"`
	ModelRequested       string `json:"model_requested,omitempty"`
	ModelSelectionReason string `json:"model_selection_reason,omitempty"`
	TokensUsed           *int32 `json:"tokens_used,omitempty"`
	PromptTokens         *int32 `json:"prompt_tokens,omitempty"`
	ResponseTokens       *int32 `json:"response_tokens,omitempty"`
	ResponseTimeMS       int64  `json:"response_time_ms"`
	ContextProvided      bool   `json:"context_provided"`
}

// 📦 Response is the outcome of a request. Failures are reported here, never
// as a Go error.
type Response struct {
	Status    string    `json:"status"`
	Origin    string    `json:"origin"`
	Evidence  string    `json:"evidence,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorType string    `json:"error_type,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// OK reports whether the request produced evidence.
func (r *Response) OK() bool {
	return r.Status == StatusOK
}

// 🔌 GenerateOptions are the generation parameters passed to a Generator
type GenerateOptions struct {
	MaxTokens   int32
	Temperature float32
}

// 🔌 Generation is the raw result of a Generator. Token counts are nil when
// the backend does not report them.
type Generation struct {
	Text           string
	PromptTokens   *int32
	ResponseTokens *int32
	TotalTokens    *int32
}

// 🔌 Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (*Generation, error)
}

// GeneratorFactory builds a Generator for a credential.
type GeneratorFactory func(ctx context.Context, credential string) (Generator, error)

// 🌉 Bridge turns requests into responses
type Bridge struct {
	factory GeneratorFactory
	now     func() time.Time
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// 🏭 New creates a bridge. A nil factory uses the Gemini API.
func New(factory GeneratorFactory, opts ...Option) *Bridge {
	if factory == nil {
		factory = NewGenAIGenerator
	}
	b := &Bridge{factory: factory, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SelectModel returns the model a request runs on and why.
func SelectModel(requested string, c *Context) (model, reason string) {
	model = DefaultModel
	if slices.Contains(SupportedModels, requested) {
		model = requested
	}
	reason = ReasonFlashDefault
	if c != nil && (c.Attempts >= 2 || c.Depth == "deep") {
		reason = ReasonProEscalation
	}
	return model, reason
}

// 🚀 Invoke runs one request
func (b *Bridge) Invoke(ctx context.Context, req Request) *Response {
	requestID := uuid.NewString()
	logger := zerolog.Ctx(ctx).With().Str("request_id", requestID).Logger()

	if req.Credential == "" {
		return b.failure(ErrMissingCredential, "", nil)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return b.failure(ErrInvalidPrompt, "", nil)
	}

	model, reason := SelectModel(req.Model, req.Context)
	opts := GenerateOptions{MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
	if req.MaxTokens > 0 {
		// the API takes an int32; larger budgets saturate rather than wrap
		opts.MaxTokens = int32(min(req.MaxTokens, math.MaxInt32))
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}

	logger.Debug().
		Str("model", model).
		Str("reason", reason).
		Int32("max_tokens", opts.MaxTokens).
		Float32("temperature", opts.Temperature).
		Msg("invoking gemini")

	start := b.now()
	gen, err := b.factory(ctx, req.Credential)
	if err != nil {
		logger.Debug().Err(err).Msg("creating generator")
		return b.failure(err, errorType(err), &Metadata{
			RequestID:      requestID,
			ModelRequested: model,
			ResponseTimeMS: b.now().Sub(start).Milliseconds(),
		})
	}

	out, err := gen.Generate(ctx, model, req.Prompt, opts)
	elapsed := b.now().Sub(start).Milliseconds()
	if err != nil {
		logger.Debug().Err(err).Msg("generating content")
		return b.failure(err, errorType(err), &Metadata{
			RequestID:      requestID,
			ModelRequested: model,
			ResponseTimeMS: elapsed,
		})
	}

	if out == nil || strings.TrimSpace(out.Text) == "" {
		return b.failure(ErrEmptyResponse, "", &Metadata{
			RequestID:      requestID,
			ModelUsed:      model,
			ResponseTimeMS: elapsed,
		})
	}

	logger.Debug().Int64("response_time_ms", elapsed).Msg("gemini responded")

	return &Response{
		Status:    StatusOK,
		Origin:    Origin,
		Evidence:  out.Text,
		Timestamp: b.now(),
		Metadata: &Metadata{
			RequestID:            requestID,
			ModelUsed:            model,
			ModelRequested:       req.Model,
			ModelSelectionReason: reason,
			TokensUsed:           out.TotalTokens,
			PromptTokens:         out.PromptTokens,
			ResponseTokens:       out.ResponseTokens,
			ResponseTimeMS:       elapsed,
			ContextProvided:      req.Context.provided(),
		},
	}
}

func (b *Bridge) failure(err error, kind string, md *Metadata) *Response {
	return &Response{
		Status:    StatusError,
		Origin:    Origin,
		Error:     err.Error(),
		ErrorType: kind,
		Timestamp: b.now(),
		Metadata:  md,
	}
}

// typedError carries a backend-specific error category.
type typedError struct {
	kind string
	err  error
}

func (e *typedError) Error() string     { return e.err.Error() }
func (e *typedError) Unwrap() error     { return e.err }
func (e *typedError) ErrorType() string { return e.kind }

func errorType(err error) string {
	var typed interface{ ErrorType() string }
	switch {
	case errors.As(err, &typed):
		return typed.ErrorType()
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	default:
		return "UnknownError"
	}
}
