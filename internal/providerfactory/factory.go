// internal/providerfactory/factory.go

// Package providerfactory selects and configures the ModelClient for a
// provider identifier, wrapping every client with transient-failure retry.
package providerfactory

import (
	"fmt"

	"github.com/mwiater/biasprobe/internal/providers"
	"github.com/mwiater/biasprobe/internal/providers/anthropic"
	"github.com/mwiater/biasprobe/internal/providers/ollama"
	"github.com/mwiater/biasprobe/internal/providers/openai"
)

// NewModelClient builds the ModelClient for the given credentials. An
// unsupported provider identifier is a configuration error, surfaced
// immediately and never retried.
func NewModelClient(creds providers.Credentials, defaults providers.Defaults, policy providers.RetryPolicy) (providers.ModelClient, error) {
	var client providers.ModelClient
	var err error

	switch creds.Provider {
	case "openai":
		client, err = openai.New(creds, defaults)
	case "anthropic":
		client, err = anthropic.New(creds, defaults)
	case "ollama":
		client, err = ollama.New(creds, defaults)
	default:
		return nil, fmt.Errorf("unsupported provider %q (supported: %v)", creds.Provider, providers.SupportedProviders())
	}
	if err != nil {
		return nil, err
	}

	return providers.NewRetryingClient(client, policy), nil
}
