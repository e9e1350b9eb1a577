// internal/testcases/testcases.go

// Package testcases holds the catalog of cognitive-bias test cases the
// engine runs against a model: prompt templates, variable bindings, and the
// scoring rubric for each case. Cases are immutable once loaded.
package testcases

import (
	"encoding/json"
	"fmt"
	"sort"
)

// BiasType is one of the cognitive-bias categories under test.
type BiasType string

const (
	// BiasAnchoring tests over-weighting of initial reference values.
	BiasAnchoring BiasType = "anchoring"
	// BiasLossAversion tests disproportionate response to losses vs gains.
	BiasLossAversion BiasType = "loss_aversion"
	// BiasConfirmation tests dismissal of contradictory evidence.
	BiasConfirmation BiasType = "confirmation_bias"
	// BiasSunkCost tests decisions influenced by irrecoverable past costs.
	BiasSunkCost BiasType = "sunk_cost"
	// BiasAvailability tests probability estimates skewed by memorable examples.
	BiasAvailability BiasType = "availability_heuristic"
)

// AllBiasTypes returns every bias type in catalog order.
func AllBiasTypes() []BiasType {
	return []BiasType{BiasAnchoring, BiasLossAversion, BiasConfirmation, BiasSunkCost, BiasAvailability}
}

// ParseBiasType validates a bias-type identifier string.
func ParseBiasType(s string) (BiasType, error) {
	for _, b := range AllBiasTypes() {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bias type %q", s)
}

// RubricDimension is one named, independently scored axis of a bias.
type RubricDimension struct {
	Name       string   `json:"name"`
	Indicators []string `json:"indicators"`
	MaxScale   float64  `json:"maxScale"`
	Weight     float64  `json:"weight"`
}

// ScoringRubric groups the dimensions a response is scored against. Weights
// need not sum to 1; they act as relative multipliers.
type ScoringRubric struct {
	Dimensions []RubricDimension `json:"dimensions"`
}

// VariableValues holds the values bound to one template variable: a scalar
// is a single-element list, a list cycles across iterations.
type VariableValues []string

// UnmarshalJSON accepts either a scalar string or a list of strings.
func (v *VariableValues) UnmarshalJSON(data []byte) error {
	var scalar string
	if err := json.Unmarshal(data, &scalar); err == nil {
		*v = VariableValues{scalar}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("variable values must be a string or list of strings: %w", err)
	}
	*v = VariableValues(list)
	return nil
}

// TestCase describes one bias probe: its prompt template, optional control
// prompt, variable bindings, and scoring rubric.
type TestCase struct {
	ID             string                    `json:"id"`
	Bias           BiasType                  `json:"biasType"`
	Category       string                    `json:"category"`
	Difficulty     string                    `json:"difficulty"`
	Tags           []string                  `json:"tags,omitempty"`
	PromptTemplate string                    `json:"promptTemplate"`
	ControlPrompt  string                    `json:"controlPrompt,omitempty"`
	Variables      map[string]VariableValues `json:"variables,omitempty"`
	Rubric         ScoringRubric             `json:"rubric"`
}

// Filter selects a subset of the catalog.
type Filter struct {
	BiasTypes  []BiasType
	Difficulty string
	Category   string
	Tags       []string
}

// matches reports whether tc satisfies every populated filter field.
func (f Filter) matches(tc TestCase) bool {
	if len(f.BiasTypes) > 0 {
		found := false
		for _, b := range f.BiasTypes {
			if tc.Bias == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Difficulty != "" && tc.Difficulty != f.Difficulty {
		return false
	}
	if f.Category != "" && tc.Category != f.Category {
		return false
	}
	for _, want := range f.Tags {
		found := false
		for _, tag := range tc.Tags {
			if tag == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Registry is the in-memory catalog of test cases, keyed by id.
type Registry struct {
	cases []TestCase
	byID  map[string]int
}

// NewRegistry returns a registry preloaded with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]int)}
	for _, tc := range builtinCatalog() {
		_ = r.add(tc)
	}
	return r
}

// add appends a case, rejecting duplicate ids.
func (r *Registry) add(tc TestCase) error {
	if _, exists := r.byID[tc.ID]; exists {
		return fmt.Errorf("duplicate test case id %q", tc.ID)
	}
	r.byID[tc.ID] = len(r.cases)
	r.cases = append(r.cases, tc)
	return nil
}

// Case looks up a test case by id.
func (r *Registry) Case(id string) (TestCase, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return TestCase{}, false
	}
	return r.cases[idx], true
}

// Cases returns the cases matching the filter, ordered by bias type then id.
func (r *Registry) Cases(filter Filter) []TestCase {
	var matched []TestCase
	for _, tc := range r.cases {
		if filter.matches(tc) {
			matched = append(matched, tc)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Bias != matched[j].Bias {
			return matched[i].Bias < matched[j].Bias
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}

// Len returns the number of registered cases.
func (r *Registry) Len() int {
	return len(r.cases)
}
