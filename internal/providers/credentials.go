// internal/providers/credentials.go
package providers

import "github.com/mwiater/biasprobe/internal/logging"

// Credentials is the resolved model identity handed to the engine by the
// orchestration layer: provider family, model id, API key, and base URL for
// providers that need one.
type Credentials struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
}

// LogFallbacks records determinism downgrades in the event log. Downgrades
// are not errors: execution continues with the best achievable sampling
// configuration.
func LogFallbacks(meta DeterminismMetadata) {
	if len(meta.FallbackReasons) == 0 {
		return
	}
	for _, reason := range meta.FallbackReasons {
		logging.LogEvent("[DETERMINISM] %s: requested=%s achieved=%s: %s",
			meta.Capabilities.Provider, meta.RequestedMode, meta.AchievedMode, reason)
	}
}
