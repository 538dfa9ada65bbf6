// Package translator wraps single calls to machine-translation backends.
// LLM backends (OpenRouter, Ollama) build a prompt that demands bare
// translations with placeholders intact; retries are the pipeline's job,
// never this package's.
package translator

import (
	"context"
	"fmt"
	"time"
)

// Config carries backend credentials and tuning, resolved once at process
// start and passed in explicitly.
type Config struct {
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Model       string        `mapstructure:"model" json:"model"`
	Models      []string      `mapstructure:"models" json:"models"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	Credentials string        `mapstructure:"credentials" json:"credentials"`
}

// Request asks for one unit's source text to be translated.
type Request struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	// Context is an optional hint (unit key, surrounding copy) injected
	// into the prompt, never translated.
	Context string `json:"context,omitempty"`
	// Strict switches to a harsher prompt after a malformed response.
	Strict bool `json:"-"`
}

// Result is the outcome of a single translate call.
type Result struct {
	TranslatedText string            `json:"translated_text"`
	Model          string            `json:"model"`
	Latency        time.Duration     `json:"latency"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Requestor is a translation backend. Implementations perform exactly one
// attempt per Translate call.
type Requestor interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
	IsAvailable(ctx context.Context) error
}

// Reason classifies a failed translate call.
type Reason string

const (
	ReasonQuota     Reason = "quota"
	ReasonMalformed Reason = "malformed-response"
	ReasonNetwork   Reason = "network"
	ReasonTimeout   Reason = "timeout"
)

// RequestError is the only error type Translate returns.
type RequestError struct {
	Reason Reason
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("translate failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("translate failed (%s)", e.Reason)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Temporary reports whether the failure is worth a plain retry. Malformed
// responses are not: those get at most one strict-prompt retry upstream.
func (e *RequestError) Temporary() bool {
	return e.Reason == ReasonQuota || e.Reason == ReasonNetwork || e.Reason == ReasonTimeout
}

// wrapTransport classifies a transport-level failure as timeout or network.
func wrapTransport(ctx context.Context, err error) *RequestError {
	if ctx.Err() == context.DeadlineExceeded {
		return &RequestError{Reason: ReasonTimeout, Err: err}
	}
	return &RequestError{Reason: ReasonNetwork, Err: err}
}
