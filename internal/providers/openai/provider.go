// internal/providers/openai/provider.go

// Package openai provides a ModelClient backed by the OpenAI Chat
// Completions API via the go-openai SDK. OpenAI supports seeded sampling,
// temperature, and top-p, but exposes no top-k control.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/mwiater/biasprobe/internal/logging"
	"github.com/mwiater/biasprobe/internal/providers"
)

// Client implements the providers.ModelClient interface using the OpenAI
// Chat Completions API.
type Client struct {
	creds    providers.Credentials
	caps     providers.ProviderCapabilities
	defaults providers.Defaults
	api      *goopenai.Client
}

// New constructs a Client for the given credentials. A base URL override is
// honored for OpenAI-compatible gateways.
func New(creds providers.Credentials, defaults providers.Defaults) (*Client, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	config := goopenai.DefaultConfig(creds.APIKey)
	if strings.TrimSpace(creds.BaseURL) != "" {
		config.BaseURL = creds.BaseURL
	}
	caps, _ := providers.CapabilitiesFor("openai")
	return &Client{
		creds:    creds,
		caps:     caps,
		defaults: defaults,
		api:      goopenai.NewClientWithConfig(config),
	}, nil
}

// GenerateCompletion resolves the requested sampling options against
// OpenAI's capabilities and issues a chat completion request.
func (c *Client) GenerateCompletion(ctx context.Context, prompt string, opts providers.CompletionOptions) (*providers.Completion, error) {
	applied, meta := providers.ResolveOptions(c.caps, opts, c.defaults)
	providers.LogFallbacks(meta)

	req := goopenai.ChatCompletionRequest{
		Model:     applied.Model,
		MaxTokens: applied.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Seed: applied.Seed,
	}
	if applied.Temperature != nil {
		// The SDK drops a zero temperature via omitempty; the smallest
		// nonzero float keeps greedy sampling on the wire.
		temp := float32(*applied.Temperature)
		if temp == 0 {
			temp = math.SmallestNonzeroFloat32
		}
		req.Temperature = temp
	}
	if applied.TopP != nil {
		req.TopP = float32(*applied.TopP)
	}
	logging.LogRequest("ENGINE->LLM", "openai", applied.Model, req)

	timeout := providers.ResolveTimeout(opts, c.defaults)
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(reqCtx, req)
	if err != nil {
		return nil, mapAPIError(err, timeout)
	}
	logging.LogRequest("LLM->ENGINE", "openai", applied.Model, resp)

	if len(resp.Choices) == 0 {
		return nil, providers.NewRequestError("openai", http.StatusUnprocessableEntity, "response contained no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, providers.NewRequestError("openai", http.StatusUnprocessableEntity, "model returned empty content")
	}

	return &providers.Completion{
		Content:      content,
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(resp.Choices[0].FinishReason),
		Determinism:  meta,
	}, nil
}

// TestConnection lists models to verify the endpoint and credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return mapAPIError(err, 0)
	}
	return nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

// mapAPIError converts SDK failures to the engine's uniform RequestError.
func mapAPIError(err error, timeout time.Duration) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return providers.NewRequestError("openai", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var statusErr *goopenai.RequestError
	if errors.As(err, &statusErr) {
		return providers.NewRequestError("openai", statusErr.HTTPStatusCode, statusErr.Error())
	}
	return providers.WrapTransportError("openai", err, timeout)
}
