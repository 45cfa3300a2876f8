// Chat provider factory - builder-first API for creating gateway providers.
//
// Quick Start:
//
//	// Simplest: use defaults, read API key from environment
//	gemini, err := gateway.ProviderGemini.FromEnv()
//
//	// With custom model
//	claude, err := gateway.ProviderAnthropic.Model(gateway.ModelAnthropicClaudeOpus45).FromEnv()
//
//	// Full configuration
//	custom, err := gateway.ProviderOpenAI.
//	    Model(gateway.ModelOpenAIGPT52).
//	    MaxTokens(8192).
//	    Temperature(0.3).
//	    FromEnv()

package gateway

import (
	"fmt"
	"os"
	"strings"
)

// ProviderType represents supported chat providers.
type ProviderType int

const (
	// ProviderGemini is the Google Gemini provider (default for atelier).
	ProviderGemini ProviderType = iota
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderGemini:
		return "gemini"
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this provider's API key.
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// DefaultModel returns the default model for this provider.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderGemini:
		return ModelGeminiFlash3
	case ProviderOpenAI:
		return ModelOpenAIGPT52
	case ProviderAnthropic:
		return ModelAnthropicClaudeOpus45
	default:
		return ""
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(s) {
	case "gemini", "google":
		return ProviderGemini, nil
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// FromEnv creates a provider with defaults, reading API key from environment.
func (p ProviderType) FromEnv() (ChatProvider, error) {
	return NewProviderBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific model.
func (p ProviderType) Model(model string) *ProviderBuilder {
	return NewProviderBuilder(p).Model(model)
}

// APIKey creates a provider with an explicit API key (uses defaults for everything else).
func (p ProviderType) APIKey(key string) (ChatProvider, error) {
	return NewProviderBuilder(p).APIKey(key)
}

// ProviderBuilder is a builder for configuring chat providers.
type ProviderBuilder struct {
	providerType ProviderType
	model        string
	maxTokens    uint32
	temperature  *float32
}

// NewProviderBuilder creates a new builder for the given provider.
func NewProviderBuilder(providerType ProviderType) *ProviderBuilder {
	return &ProviderBuilder{
		providerType: providerType,
	}
}

// Model sets the model to use.
func (b *ProviderBuilder) Model(model string) *ProviderBuilder {
	b.model = model
	return b
}

// MaxTokens sets maximum tokens for responses.
func (b *ProviderBuilder) MaxTokens(tokens uint32) *ProviderBuilder {
	b.maxTokens = tokens
	return b
}

// Temperature sets temperature (0.0 = deterministic, 1.0 = creative).
func (b *ProviderBuilder) Temperature(temp float32) *ProviderBuilder {
	b.temperature = &temp
	return b
}

// FromEnv builds the provider, reading API key from environment.
func (b *ProviderBuilder) FromEnv() (ChatProvider, error) {
	envVar := b.providerType.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", b.providerType, envVar)
	}
	return b.build(apiKey)
}

// APIKey builds the provider with an explicit API key.
func (b *ProviderBuilder) APIKey(key string) (ChatProvider, error) {
	return b.build(key)
}

func (b *ProviderBuilder) build(apiKey string) (ChatProvider, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}

	maxTokens := b.maxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	temperature := float32(0.7) // default
	if b.temperature != nil {
		temperature = *b.temperature
	}

	switch b.providerType {
	case ProviderGemini:
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}

// Model identifier constants for all supported providers.

// Gemini model identifiers
const (
	// ModelGeminiFlash3 is Gemini 3 Flash: speed optimized, default chat model.
	ModelGeminiFlash3 = "gemini-3-flash"
	// ModelGeminiPro3 is Gemini 3 Pro: advanced reasoning, 1M context window.
	ModelGeminiPro3 = "gemini-3-pro"
	// ModelGeminiDeepThink3 is Gemini 3 Deep Think: extended reasoning mode.
	ModelGeminiDeepThink3 = "gemini-3-deep-think"
	// ModelGeminiFlash25 is Gemini 2.5 Flash: legacy model.
	ModelGeminiFlash25 = "gemini-2.5-flash"
	// ModelGeminiImage is the image-out Gemini model used for editing.
	ModelGeminiImage = "gemini-2.5-flash-image"
	// ModelImagen is the Imagen text-to-image model.
	ModelImagen = "imagen-4.0-generate-001"
	// ModelGeminiTTS is the Gemini speech-synthesis model.
	ModelGeminiTTS = "gemini-2.5-flash-preview-tts"
)

// OpenAI model identifiers
const (
	// ModelOpenAIGPT52 is GPT-5.2: latest flagship model.
	ModelOpenAIGPT52 = "gpt-5.2"
	// ModelOpenAIGPT4o is GPT-4o: legacy model.
	ModelOpenAIGPT4o = "gpt-4o"
)

// Anthropic model identifiers
const (
	// ModelAnthropicClaudeOpus45 is Claude Opus 4.5: latest flagship.
	ModelAnthropicClaudeOpus45 = "claude-opus-4-5-20251101"
	// ModelAnthropicClaudeSonnet4 is Claude Sonnet 4: balanced performance.
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
)
