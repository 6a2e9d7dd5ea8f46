package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/yungbote/slangify-backend/internal/clients/openai"
)

func TestGenerateEmptyInputSkipsBackend(t *testing.T) {
	ai := &fakeAI{}
	gs := NewGenerationService(testLogger(t), ai, time.Second)

	got := gs.Generate(context.Background(), "street", "   ")
	if ai.callCount() != 0 {
		t.Fatalf("backend called %d times for empty input", ai.callCount())
	}
	if !got.Success {
		t.Fatal("canned reply should be a success")
	}
	if got.Text == "" {
		t.Fatal("canned reply is empty")
	}
	if got.TokensUsed != 1 {
		t.Fatalf("TokensUsed = %d, want the nominal minimum 1", got.TokensUsed)
	}
}

func TestGenerateSuccess(t *testing.T) {
	ai := &fakeAI{generate: func(system, user string) (*openai.TextResult, error) {
		if system == "" {
			t.Fatal("persona prompt not passed to backend")
		}
		return &openai.TextResult{Text: "  no cap, that slaps  ", InputTokens: 10, OutputTokens: 20, TotalTokens: 30}, nil
	}}
	gs := NewGenerationService(testLogger(t), ai, time.Second)

	got := gs.Generate(context.Background(), "heavy", "that is excellent")
	if !got.Success {
		t.Fatalf("Success = false: %s", got.ErrorMessage)
	}
	if got.Text != "no cap, that slaps" {
		t.Fatalf("Text = %q", got.Text)
	}
	if got.TokensUsed != 30 {
		t.Fatalf("TokensUsed = %d, want 30", got.TokensUsed)
	}
	if got.Persona != PersonaHeavy {
		t.Fatalf("Persona = %q, want %q", got.Persona, PersonaHeavy)
	}
	if got.BackendModel != "test-model" {
		t.Fatalf("BackendModel = %q", got.BackendModel)
	}
}

func TestGenerateTokenFloor(t *testing.T) {
	ai := &fakeAI{generate: func(system, user string) (*openai.TextResult, error) {
		return &openai.TextResult{Text: "yo", TotalTokens: 0}, nil
	}}
	gs := NewGenerationService(testLogger(t), ai, time.Second)

	got := gs.Generate(context.Background(), "lite", "hi")
	if got.TokensUsed != 1 {
		t.Fatalf("TokensUsed = %d, want floor of 1", got.TokensUsed)
	}
}

func TestGenerateBackendFailure(t *testing.T) {
	ai := &fakeAI{generate: func(system, user string) (*openai.TextResult, error) {
		return nil, fmt.Errorf("upstream 503")
	}}
	gs := NewGenerationService(testLogger(t), ai, time.Second)

	got := gs.Generate(context.Background(), "lite", "hello")
	if got.Success {
		t.Fatal("Success = true on backend failure")
	}
	if got.ErrorMessage == "" {
		t.Fatal("ErrorMessage empty on failure")
	}
	if got.TokensUsed != 1 {
		t.Fatalf("TokensUsed = %d, want nominal 1 on failure", got.TokensUsed)
	}
}

func TestGenerateUnknownTierUsesDefault(t *testing.T) {
	var seenSystem string
	ai := &fakeAI{generate: func(system, user string) (*openai.TextResult, error) {
		seenSystem = system
		return &openai.TextResult{Text: "ok", TotalTokens: 2}, nil
	}}
	gs := NewGenerationService(testLogger(t), ai, time.Second)

	got := gs.Generate(context.Background(), "mystery-tier", "hello")
	if got.Persona != DefaultPersona {
		t.Fatalf("Persona = %q, want default", got.Persona)
	}
	if seenSystem != LookupPersona(DefaultPersona).SystemPrompt {
		t.Fatal("default persona prompt not used for unknown tier")
	}
}
