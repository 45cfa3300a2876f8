package gateway

import (
	"strings"
	"testing"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		input    string
		expected ProviderType
		wantErr  bool
	}{
		{"gemini", ProviderGemini, false},
		{"google", ProviderGemini, false},
		{"GEMINI", ProviderGemini, false},
		{"openai", ProviderOpenAI, false},
		{"gpt", ProviderOpenAI, false},
		{"anthropic", ProviderAnthropic, false},
		{"claude", ProviderAnthropic, false},
		{"mistral", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseProviderType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseProviderType(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProviderType(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseProviderType(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestProviderTypeDefaults(t *testing.T) {
	if ProviderGemini.DefaultModel() != ModelGeminiFlash3 {
		t.Errorf("unexpected gemini default model: %s", ProviderGemini.DefaultModel())
	}
	if ProviderGemini.EnvVar() != "GEMINI_API_KEY" {
		t.Errorf("unexpected gemini env var: %s", ProviderGemini.EnvVar())
	}
	if ProviderAnthropic.String() != "anthropic" {
		t.Errorf("unexpected string: %s", ProviderAnthropic.String())
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := ProviderOpenAI.FromEnv()
	if err == nil {
		t.Fatal("expected error when API key env var is unset")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should name the missing variable, got: %v", err)
	}
}

func TestBuilderDefaults(t *testing.T) {
	provider, err := ProviderOpenAI.APIKey("test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	oai, ok := provider.(*OpenAIProvider)
	if !ok {
		t.Fatalf("expected *OpenAIProvider, got %T", provider)
	}
	if oai.Model() != ModelOpenAIGPT52 {
		t.Errorf("expected default model %s, got %s", ModelOpenAIGPT52, oai.Model())
	}
	if oai.maxTokens != 4096 {
		t.Errorf("expected default max tokens 4096, got %d", oai.maxTokens)
	}
	if oai.temperature != 0.7 {
		t.Errorf("expected default temperature 0.7, got %f", oai.temperature)
	}
}

func TestBuilderOverrides(t *testing.T) {
	provider, err := NewProviderBuilder(ProviderOpenAI).
		Model(ModelOpenAIGPT4o).
		MaxTokens(512).
		Temperature(0.1).
		APIKey("test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	oai := provider.(*OpenAIProvider)
	if oai.Model() != ModelOpenAIGPT4o {
		t.Errorf("expected model override, got %s", oai.Model())
	}
	if oai.maxTokens != 512 {
		t.Errorf("expected max tokens 512, got %d", oai.maxTokens)
	}
	if oai.temperature != float32(0.1) {
		t.Errorf("expected temperature 0.1, got %f", oai.temperature)
	}
}
