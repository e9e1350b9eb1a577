// internal/providers/provider.go

// Package providers defines the interfaces for interacting with different AI
// model providers. It provides a common abstraction layer for issuing
// completion requests, negotiating sampling capabilities, normalizing
// determinism settings, and mapping provider-specific failures to a uniform
// error type, regardless of the underlying provider implementation (e.g.
// OpenAI, Anthropic, Ollama).
package providers

import (
	"context"
	"time"
)

// DeterminismMode is the caller's requested reproducibility level for
// sampling a model.
type DeterminismMode string

const (
	// DeterminismFull requests maximum reproducibility: fixed seed and the
	// lowest sampling spread the provider permits.
	DeterminismFull DeterminismMode = "full"
	// DeterminismNear accepts best-effort reproducibility with the caller's
	// own sampling values.
	DeterminismNear DeterminismMode = "near"
	// DeterminismDisabled leaves sampling entirely to the provider defaults.
	DeterminismDisabled DeterminismMode = "disabled"
)

// CompletionOptions carries the sampling controls a caller may request for a
// single completion. Pointer fields distinguish "explicitly requested" from
// "left at default", which matters for determinism fallback reporting.
type CompletionOptions struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	TopK        *int
	Seed        *int
	Timeout     time.Duration
	Determinism DeterminismMode
}

// AppliedOptions records the sampling values actually sent to the provider
// after capability resolution.
type AppliedOptions struct {
	Model       string   `json:"model"`
	MaxTokens   int      `json:"maxTokens"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
	TopK        *int     `json:"topK,omitempty"`
	Seed        *int     `json:"seed,omitempty"`
}

// DeterminismMetadata is attached to every completion for audit purposes: it
// records what was requested, what was achievable, and why any parameter was
// dropped or clamped.
type DeterminismMetadata struct {
	RequestedMode   DeterminismMode      `json:"requestedMode"`
	AchievedMode    DeterminismMode      `json:"achievedMode"`
	Capabilities    ProviderCapabilities `json:"capabilities"`
	Applied         AppliedOptions       `json:"applied"`
	FallbackReasons []string             `json:"fallbackReasons,omitempty"`
}

// Completion is the uniform result of a model call.
type Completion struct {
	Content      string              `json:"content"`
	TokensUsed   int                 `json:"tokensUsed,omitempty"`
	FinishReason string              `json:"finishReason,omitempty"`
	Determinism  DeterminismMetadata `json:"determinism"`
}

// ModelClient is the interface all provider adapters implement. Each adapter
// resolves requested sampling options against its capabilities, issues the
// network call, and maps provider-specific errors to *RequestError.
type ModelClient interface {
	// GenerateCompletion sends a single prompt and returns the model's
	// response with determinism metadata attached.
	GenerateCompletion(ctx context.Context, prompt string, opts CompletionOptions) (*Completion, error)
	// TestConnection verifies the provider endpoint is reachable with the
	// configured credentials.
	TestConnection(ctx context.Context) error
	// Close releases any resources held by the client.
	Close() error
}
