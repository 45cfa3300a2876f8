package gateway

import (
	"testing"

	"google.golang.org/genai"
)

func TestConvertToGeminiContents(t *testing.T) {
	messages := []ChatMessage{
		SystemMessage("You are a helpful assistant."),
		UserMessage("Hello"),
		AssistantMessage("Hi there"),
		UserMessage("How are you?"),
	}

	contents, system := convertToGeminiContents(messages)

	if system != "You are a helpful assistant." {
		t.Errorf("expected system instruction to be extracted, got %q", system)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents (system excluded), got %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser {
		t.Errorf("expected first content role user, got %q", contents[0].Role)
	}
	if contents[1].Role != genai.RoleModel {
		t.Errorf("expected assistant mapped to model role, got %q", contents[1].Role)
	}
	if contents[2].Role != genai.RoleUser {
		t.Errorf("expected last content role user, got %q", contents[2].Role)
	}
}

func TestConvertToGeminiContentsNoSystem(t *testing.T) {
	contents, system := convertToGeminiContents([]ChatMessage{
		UserMessage("just a question"),
	})

	if system != "" {
		t.Errorf("expected empty system instruction, got %q", system)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
}

func TestGeminiUsageNilSafety(t *testing.T) {
	if usage := geminiUsage(nil); usage != nil {
		t.Errorf("expected nil usage for nil response, got %+v", usage)
	}
	if usage := geminiUsage(&genai.GenerateContentResponse{}); usage != nil {
		t.Errorf("expected nil usage when metadata absent, got %+v", usage)
	}
}

func TestGeminiUsageExtraction(t *testing.T) {
	response := &genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 34,
			TotalTokenCount:      46,
		},
	}

	usage := geminiUsage(response)
	if usage == nil {
		t.Fatal("expected usage to be extracted")
	}
	if usage.PromptTokens != 12 || usage.CompletionTokens != 34 || usage.TotalTokens != 46 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}
