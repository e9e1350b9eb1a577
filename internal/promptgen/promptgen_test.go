// internal/promptgen/promptgen_test.go
package promptgen

import (
	"testing"

	"github.com/mwiater/biasprobe/internal/testcases"
)

func sampleCase() testcases.TestCase {
	return testcases.TestCase{
		ID:             "sample",
		Bias:           testcases.BiasAnchoring,
		Category:       "estimation",
		Difficulty:     "basic",
		PromptTemplate: "Estimate the value of {{item}} given it sold for {{anchor}}.",
		ControlPrompt:  "Estimate the value of {{item}}.",
		Variables: map[string]testcases.VariableValues{
			"item":   {"a bike", "a mixer"},
			"anchor": {"$100", "$200", "$300"},
		},
	}
}

func TestGenerateCyclesListVariablesByIteration(t *testing.T) {
	tc := sampleCase()

	first, err := Generate(tc, 1)
	if err != nil {
		t.Fatalf("Generate(1): %v", err)
	}
	if first.Text != "Estimate the value of a bike given it sold for $100." {
		t.Fatalf("iteration 1 text = %q", first.Text)
	}

	second, err := Generate(tc, 2)
	if err != nil {
		t.Fatalf("Generate(2): %v", err)
	}
	if second.Variables["item"] != "a mixer" || second.Variables["anchor"] != "$200" {
		t.Fatalf("iteration 2 variables = %v", second.Variables)
	}

	// Lists of different lengths wrap independently.
	third, err := Generate(tc, 3)
	if err != nil {
		t.Fatalf("Generate(3): %v", err)
	}
	if third.Variables["item"] != "a bike" || third.Variables["anchor"] != "$300" {
		t.Fatalf("iteration 3 variables = %v", third.Variables)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	tc := sampleCase()
	a, _ := Generate(tc, 5)
	b, _ := Generate(tc, 5)
	if a.Text != b.Text {
		t.Fatalf("same iteration produced different prompts: %q vs %q", a.Text, b.Text)
	}
}

func TestGenerateCarriesMetadata(t *testing.T) {
	prompt, err := Generate(sampleCase(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if prompt.TestCaseID != "sample" || prompt.Iteration != 1 {
		t.Fatalf("identity = %s/%d", prompt.TestCaseID, prompt.Iteration)
	}
	if prompt.Metadata.Bias != testcases.BiasAnchoring || prompt.Metadata.Category != "estimation" {
		t.Fatalf("metadata = %+v", prompt.Metadata)
	}
}

func TestGenerateRejectsUnboundVariables(t *testing.T) {
	tc := sampleCase()
	tc.PromptTemplate = "What about {{mystery}}?"
	if _, err := Generate(tc, 1); err == nil {
		t.Fatal("expected error for unbound variable")
	}
}

func TestGenerateRejectsBadIteration(t *testing.T) {
	if _, err := Generate(sampleCase(), 0); err == nil {
		t.Fatal("expected error for iteration 0")
	}
}

func TestGenerateControl(t *testing.T) {
	text, ok, err := GenerateControl(sampleCase(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("control prompt should exist")
	}
	if text != "Estimate the value of a mixer." {
		t.Fatalf("control text = %q", text)
	}

	noControl := sampleCase()
	noControl.ControlPrompt = ""
	if _, ok, _ := GenerateControl(noControl, 1); ok {
		t.Fatal("expected no control prompt")
	}
}
