// internal/providers/capabilities.go
package providers

// ProviderCapabilities describes which sampling controls a provider family
// supports and the minimum usable value for each supported control. The
// table is static: capability differences are a property of the provider's
// API surface, not of individual models.
type ProviderCapabilities struct {
	Provider            string  `json:"provider"`
	SupportsSeed        bool    `json:"supportsSeed"`
	SupportsTemperature bool    `json:"supportsTemperature"`
	SupportsTopP        bool    `json:"supportsTopP"`
	SupportsTopK        bool    `json:"supportsTopK"`
	MinTemperature      float64 `json:"minTemperature"`
	MinTopP             float64 `json:"minTopP"`
	MinTopK             int     `json:"minTopK"`
}

// capabilityTable is the static lookup of sampling controls per provider
// family.
var capabilityTable = map[string]ProviderCapabilities{
	"openai": {
		Provider:            "openai",
		SupportsSeed:        true,
		SupportsTemperature: true,
		SupportsTopP:        true,
		SupportsTopK:        false,
		MinTemperature:      0,
		MinTopP:             0.01,
	},
	"anthropic": {
		Provider:            "anthropic",
		SupportsSeed:        false,
		SupportsTemperature: true,
		SupportsTopP:        true,
		SupportsTopK:        true,
		MinTemperature:      0,
		MinTopP:             0.01,
		MinTopK:             1,
	},
	"ollama": {
		Provider:            "ollama",
		SupportsSeed:        true,
		SupportsTemperature: true,
		SupportsTopP:        true,
		SupportsTopK:        true,
		MinTemperature:      0,
		MinTopP:             0.01,
		MinTopK:             1,
	},
}

// CapabilitiesFor returns the capability set for the named provider family.
// The second return value is false for unknown providers.
func CapabilitiesFor(provider string) (ProviderCapabilities, bool) {
	caps, ok := capabilityTable[provider]
	return caps, ok
}

// SupportedProviders lists the provider identifiers present in the
// capability table.
func SupportedProviders() []string {
	return []string{"anthropic", "ollama", "openai"}
}
