// internal/promptgen/promptgen.go

// Package promptgen expands a test case into one concrete prompt per
// iteration. Substitution is fully deterministic: list-valued variables
// cycle by iteration index, so repeated passes vary surface wording while
// the bias-inducing structure stays constant.
package promptgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mwiater/biasprobe/internal/testcases"
)

// placeholderPattern matches {{variable}} references in prompt templates.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Metadata carries the test-case attributes a generated prompt inherits.
type Metadata struct {
	Bias       testcases.BiasType `json:"biasType"`
	Category   string             `json:"category"`
	Difficulty string             `json:"difficulty"`
	Tags       []string           `json:"tags,omitempty"`
}

// GeneratedPrompt is one concrete prompt for one iteration, together with
// the variable values that produced it.
type GeneratedPrompt struct {
	TestCaseID string            `json:"testCaseId"`
	Iteration  int               `json:"iteration"`
	Text       string            `json:"text"`
	Metadata   Metadata          `json:"metadata"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// Generate resolves the test case's template for the given 1-based
// iteration. List-valued variables are selected by (iteration-1) mod list
// length; unresolved placeholders are an error.
func Generate(tc testcases.TestCase, iteration int) (GeneratedPrompt, error) {
	if iteration < 1 {
		return GeneratedPrompt{}, fmt.Errorf("iteration must be >= 1, got %d", iteration)
	}

	resolved := make(map[string]string, len(tc.Variables))
	for name, values := range tc.Variables {
		if len(values) == 0 {
			return GeneratedPrompt{}, fmt.Errorf("test case %s: variable %q has no values", tc.ID, name)
		}
		resolved[name] = values[(iteration-1)%len(values)]
	}

	text, err := substitute(tc.PromptTemplate, resolved)
	if err != nil {
		return GeneratedPrompt{}, fmt.Errorf("test case %s: %w", tc.ID, err)
	}

	return GeneratedPrompt{
		TestCaseID: tc.ID,
		Iteration:  iteration,
		Text:       text,
		Metadata: Metadata{
			Bias:       tc.Bias,
			Category:   tc.Category,
			Difficulty: tc.Difficulty,
			Tags:       tc.Tags,
		},
		Variables: resolved,
	}, nil
}

// GenerateControl resolves the test case's control prompt, if present, with
// the same variable values as the biased prompt for the iteration.
func GenerateControl(tc testcases.TestCase, iteration int) (string, bool, error) {
	if strings.TrimSpace(tc.ControlPrompt) == "" {
		return "", false, nil
	}
	if iteration < 1 {
		return "", false, fmt.Errorf("iteration must be >= 1, got %d", iteration)
	}

	resolved := make(map[string]string, len(tc.Variables))
	for name, values := range tc.Variables {
		if len(values) == 0 {
			return "", false, fmt.Errorf("test case %s: variable %q has no values", tc.ID, name)
		}
		resolved[name] = values[(iteration-1)%len(values)]
	}

	text, err := substitute(tc.ControlPrompt, resolved)
	if err != nil {
		return "", false, fmt.Errorf("test case %s: %w", tc.ID, err)
	}
	return text, true, nil
}

// substitute replaces every {{placeholder}} with its bound value.
func substitute(template string, values map[string]string) (string, error) {
	var missing []string
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := values[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unbound template variables: %s", strings.Join(missing, ", "))
	}
	return result, nil
}
