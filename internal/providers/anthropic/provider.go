// internal/providers/anthropic/provider.go

// Package anthropic provides a ModelClient backed by the Anthropic Messages
// API. Anthropic exposes temperature, top-p, and top-k but no seed control,
// so full-determinism requests always downgrade to near.
package anthropic

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

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

// Client implements the providers.ModelClient interface using the Anthropic
// Messages API.
type Client struct {
	creds    providers.Credentials
	caps     providers.ProviderCapabilities
	defaults providers.Defaults
	baseURL  string
	client   *http.Client
}

// New constructs a Client for the given credentials.
func New(creds providers.Credentials, defaults providers.Defaults) (*Client, error) {
	if strings.TrimSpace(creds.APIKey) == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	baseURL := creds.BaseURL
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	caps, _ := providers.CapabilitiesFor("anthropic")
	return &Client{
		creds:    creds,
		caps:     caps,
		defaults: defaults,
		baseURL:  baseURL,
		client:   &http.Client{},
	}, nil
}

// messagesRequest defines the payload for the /v1/messages endpoint.
type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	TopK        *int      `json:"top_k,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse defines the subset of the Messages API response the
// engine consumes.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// errorResponse defines the error envelope returned on non-2xx statuses.
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateCompletion resolves the requested sampling options against
// Anthropic's capabilities and issues a messages request.
func (c *Client) GenerateCompletion(ctx context.Context, prompt string, opts providers.CompletionOptions) (*providers.Completion, error) {
	applied, meta := providers.ResolveOptions(c.caps, opts, c.defaults)
	providers.LogFallbacks(meta)

	payload := messagesRequest{
		Model:       applied.Model,
		MaxTokens:   applied.MaxTokens,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: applied.Temperature,
		TopP:        applied.TopP,
		TopK:        applied.TopK,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("ENGINE->LLM", "anthropic", applied.Model, body)

	timeout := providers.ResolveTimeout(opts, c.defaults)
	respBody, status, retryAfter, err := c.post(ctx, "/v1/messages", body, timeout)
	if err != nil {
		return nil, err
	}
	logging.LogRequest("LLM->ENGINE", "anthropic", applied.Model, respBody)

	if status != http.StatusOK {
		reqErr := providers.NewRequestError("anthropic", status, apiErrorMessage(respBody))
		reqErr.RetryAfter = retryAfter
		return nil, reqErr
	}

	var result messagesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("anthropic: decoding messages response: %w", err)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return nil, providers.NewRequestError("anthropic", http.StatusUnprocessableEntity, "model returned empty or blocked content")
	}

	return &providers.Completion{
		Content:      content,
		TokensUsed:   result.Usage.InputTokens + result.Usage.OutputTokens,
		FinishReason: result.StopReason,
		Determinism:  meta,
	}, nil
}

// TestConnection issues a minimal one-token request to verify credentials.
func (c *Client) TestConnection(ctx context.Context) error {
	payload := messagesRequest{
		Model:     c.creds.Model,
		MaxTokens: 1,
		Messages:  []message{{Role: "user", Content: "ping"}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	respBody, status, _, err := c.post(ctx, "/v1/messages", body, 10*time.Second)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return providers.NewRequestError("anthropic", status, apiErrorMessage(respBody))
	}
	return nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, timeout time.Duration) ([]byte, int, time.Duration, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.creds.APIKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, 0, providers.WrapTransportError("anthropic", err, timeout)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, providers.WrapTransportError("anthropic", err, timeout)
	}
	return respBody, resp.StatusCode, providers.ParseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// apiErrorMessage extracts the API error message, falling back to the raw
// body.
func apiErrorMessage(body []byte) string {
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}
