// internal/logging/logging_test.go
package logging

import (
	"strings"
	"testing"
)

func TestBuildRequestMessageFillsUnknowns(t *testing.T) {
	msg := buildRequestMessage("engine->llm", "", "", nil)
	if !strings.HasPrefix(msg, "[ENGINE->LLM]") {
		t.Fatalf("direction not uppercased: %q", msg)
	}
	if !strings.Contains(msg, "provider=unknown") || !strings.Contains(msg, "model=unknown") {
		t.Fatalf("missing unknown placeholders: %q", msg)
	}
	if !strings.Contains(msg, "payload=null") {
		t.Fatalf("nil payload not rendered as null: %q", msg)
	}
}

func TestFormatPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"empty string", "   ", `""`},
		{"string", "hello", "hello"},
		{"bytes", []byte(`{"a":1}`), `{"a":1}`},
		{"empty bytes", []byte{}, "[]"},
		{"struct", struct {
			Name string `json:"name"`
		}{Name: "x"}, `{"name":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPayload(tt.payload); got != tt.want {
				t.Fatalf("formatPayload(%v) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}
