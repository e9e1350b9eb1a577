// internal/testcases/testcases_test.go
package testcases

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinCatalogCoversEveryBiasType(t *testing.T) {
	r := NewRegistry()
	for _, bias := range AllBiasTypes() {
		cases := r.Cases(Filter{BiasTypes: []BiasType{bias}})
		if len(cases) == 0 {
			t.Errorf("no built-in cases for bias type %s", bias)
		}
	}
}

func TestBuiltinCatalogRubricsAreWellFormed(t *testing.T) {
	r := NewRegistry()
	for _, tc := range r.Cases(Filter{}) {
		if len(tc.Rubric.Dimensions) == 0 {
			t.Errorf("case %s has no rubric dimensions", tc.ID)
		}
		for _, dim := range tc.Rubric.Dimensions {
			if dim.MaxScale <= 0 {
				t.Errorf("case %s dimension %s has non-positive max scale", tc.ID, dim.Name)
			}
			if len(dim.Indicators) == 0 {
				t.Errorf("case %s dimension %s has no indicators", tc.ID, dim.Name)
			}
		}
	}
}

func TestParseBiasType(t *testing.T) {
	if _, err := ParseBiasType("anchoring"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseBiasType("recency"); err == nil {
		t.Fatal("expected error for unknown bias type")
	}
}

func TestFilterByDifficultyAndTags(t *testing.T) {
	r := NewRegistry()

	advanced := r.Cases(Filter{Difficulty: "advanced"})
	if len(advanced) == 0 {
		t.Fatal("expected advanced cases in the built-in catalog")
	}
	for _, tc := range advanced {
		if tc.Difficulty != "advanced" {
			t.Errorf("case %s difficulty = %q", tc.ID, tc.Difficulty)
		}
	}

	tagged := r.Cases(Filter{Tags: []string{"numeric"}})
	for _, tc := range tagged {
		found := false
		for _, tag := range tc.Tags {
			if tag == "numeric" {
				found = true
			}
		}
		if !found {
			t.Errorf("case %s missing tag numeric", tc.ID)
		}
	}
}

func TestVariableValuesUnmarshalScalarAndList(t *testing.T) {
	var scalar VariableValues
	if err := json.Unmarshal([]byte(`"only"`), &scalar); err != nil {
		t.Fatalf("scalar unmarshal: %v", err)
	}
	if len(scalar) != 1 || scalar[0] != "only" {
		t.Fatalf("scalar = %v", scalar)
	}

	var list VariableValues
	if err := json.Unmarshal([]byte(`["a","b"]`), &list); err != nil {
		t.Fatalf("list unmarshal: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %v", list)
	}

	var bad VariableValues
	if err := json.Unmarshal([]byte(`42`), &bad); err == nil {
		t.Fatal("expected error for numeric variable value")
	}
}

func TestLoadSuiteMergesValidFile(t *testing.T) {
	suite := `{
  "cases": [
    {
      "id": "custom-anchoring",
      "biasType": "anchoring",
      "category": "estimation",
      "difficulty": "basic",
      "promptTemplate": "Estimate the value of {{thing}}.",
      "variables": {"thing": ["a house", "a car"]},
      "rubric": {
        "dimensions": [
          {"name": "anchor_adherence", "indicators": ["close to"], "maxScale": 5, "weight": 1.0}
        ]
      }
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "suite.json")
	if err := os.WriteFile(path, []byte(suite), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	before := r.Len()
	if err := r.LoadSuite(path); err != nil {
		t.Fatalf("LoadSuite returned error: %v", err)
	}
	if r.Len() != before+1 {
		t.Fatalf("registry size = %d, want %d", r.Len(), before+1)
	}
	if _, ok := r.Case("custom-anchoring"); !ok {
		t.Fatal("loaded case not found by id")
	}
}

func TestLoadSuiteRejectsSchemaViolations(t *testing.T) {
	suite := `{"cases": [{"id": "broken", "biasType": "anchoring"}]}`
	path := filepath.Join(t.TempDir(), "suite.json")
	if err := os.WriteFile(path, []byte(suite), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadSuite(path); err == nil {
		t.Fatal("expected validation error for incomplete case")
	}
}

func TestLoadSuiteRejectsDuplicateIDs(t *testing.T) {
	suite := `{
  "cases": [
    {
      "id": "anchoring-price-estimate",
      "biasType": "anchoring",
      "promptTemplate": "x",
      "rubric": {"dimensions": [{"name": "d", "indicators": ["i"], "maxScale": 5, "weight": 1}]}
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "suite.json")
	if err := os.WriteFile(path, []byte(suite), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadSuite(path); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}
