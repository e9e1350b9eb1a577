// internal/providers/ollama/provider.go

// Package ollama provides a ModelClient backed by Ollama-compatible HTTP
// endpoints. Ollama supports every sampling control the engine negotiates,
// including seeds, which makes it the reference provider for full-determinism
// runs.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/biasprobe/internal/logging"
	"github.com/mwiater/biasprobe/internal/providers"
)

// Client implements the providers.ModelClient interface using the Ollama
// HTTP API.
type Client struct {
	creds    providers.Credentials
	caps     providers.ProviderCapabilities
	defaults providers.Defaults
	client   *http.Client
}

// New constructs a Client for the given credentials. Ollama requires a base
// URL since it is self-hosted.
func New(creds providers.Credentials, defaults providers.Defaults) (*Client, error) {
	if strings.TrimSpace(creds.BaseURL) == "" {
		return nil, fmt.Errorf("ollama: base URL is required")
	}
	caps, _ := providers.CapabilitiesFor("ollama")
	return &Client{
		creds:    creds,
		caps:     caps,
		defaults: defaults,
		client:   &http.Client{Transport: &http.Transport{ForceAttemptHTTP2: false}},
	}, nil
}

// generateRequest defines the payload for the /api/generate endpoint.
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// generateResponse defines the non-streaming response of /api/generate.
type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// GenerateCompletion resolves the requested sampling options against
// Ollama's capabilities and issues a non-streaming generate request.
func (c *Client) GenerateCompletion(ctx context.Context, prompt string, opts providers.CompletionOptions) (*providers.Completion, error) {
	applied, meta := providers.ResolveOptions(c.caps, opts, c.defaults)
	providers.LogFallbacks(meta)

	options := map[string]any{}
	if applied.Temperature != nil {
		options["temperature"] = *applied.Temperature
	}
	if applied.TopP != nil {
		options["top_p"] = *applied.TopP
	}
	if applied.TopK != nil {
		options["top_k"] = *applied.TopK
	}
	if applied.Seed != nil {
		options["seed"] = *applied.Seed
	}
	if applied.MaxTokens > 0 {
		options["num_predict"] = applied.MaxTokens
	}

	payload := generateRequest{
		Model:   applied.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("ENGINE->LLM", "ollama", applied.Model, body)

	timeout := providers.ResolveTimeout(opts, c.defaults)
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.creds.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, providers.WrapTransportError("ollama", err, timeout)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.WrapTransportError("ollama", err, timeout)
	}
	logging.LogRequest("LLM->ENGINE", "ollama", applied.Model, respBody)

	if resp.StatusCode != http.StatusOK {
		reqErr := providers.NewRequestError("ollama", resp.StatusCode, strings.TrimSpace(string(respBody)))
		reqErr.RetryAfter = providers.ParseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, reqErr
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("ollama: decoding /api/generate response: %w", err)
	}

	content := strings.TrimSpace(result.Response)
	if content == "" {
		return nil, providers.NewRequestError("ollama", http.StatusUnprocessableEntity, "model returned empty content")
	}

	return &providers.Completion{
		Content:      content,
		TokensUsed:   result.PromptEvalCount + result.EvalCount,
		FinishReason: result.DoneReason,
		Determinism:  meta,
	}, nil
}

// TestConnection verifies the host responds on /api/tags.
func (c *Client) TestConnection(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.creds.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return providers.WrapTransportError("ollama", err, 10*time.Second)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return providers.NewRequestError("ollama", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
