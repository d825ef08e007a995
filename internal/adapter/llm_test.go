package adapter

import (
	"context"
	"testing"
)

func TestNewLLMAdapter_Configured(t *testing.T) {
	a := NewLLMAdapter("http://localhost:4000", "", Options{Model: "gpt-4o-mini"})
	if !a.Configured() {
		t.Error("Adapter with gateway and model should report configured")
	}

	a = NewLLMAdapter("", "", Options{Model: "gpt-4o-mini"})
	if a.Configured() {
		t.Error("Adapter without a gateway should not report configured")
	}

	a = NewLLMAdapter("http://localhost:4000", "", Options{})
	if a.Configured() {
		t.Error("Adapter without a model should not report configured")
	}
}

func TestParseJSONArguments(t *testing.T) {
	args, err := parseJSONArguments(`{"treatment": "massage", "party_size": 2}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if args["treatment"] != "massage" {
		t.Errorf("Expected treatment, got %v", args["treatment"])
	}

	args, err = parseJSONArguments("")
	if err != nil {
		t.Fatalf("empty arguments should parse: %v", err)
	}
	if len(args) != 0 {
		t.Errorf("Expected empty map, got %v", args)
	}

	if _, err := parseJSONArguments("{broken"); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

// TestLLMAdapter_Generate requires a running OpenAI-compatible gateway
// This is a basic integration test
func TestLLMAdapter_Generate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	adapter := NewLLMAdapter("http://localhost:4000", "", Options{Model: "openrouter/anthropic/claude-3.5-sonnet"})

	ctx := context.Background()
	systemPrompt := "You are a hotel concierge."
	userMsg := "Say hello in one sentence."

	response, err := adapter.Generate(ctx, systemPrompt, userMsg, []Tool{})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if response.Content == "" {
		t.Error("Expected non-empty content in response")
	}
}
