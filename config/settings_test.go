package config

import (
	"os"
	"testing"
	"time"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic' (normalized from 'claude'), got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewEmptyProviderDefaultsToGemini(t *testing.T) {
	t.Setenv("ATELIER_PROVIDER", "")

	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got %q", settings.LLM.Provider)
	}
}

func TestNewProviderFromEnvironment(t *testing.T) {
	t.Setenv("ATELIER_PROVIDER", "claude")

	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic', got %q", settings.LLM.Provider)
	}
}

func TestNewDefaults(t *testing.T) {
	for _, key := range []string{
		"ATELIER_USER", "ATELIER_STORE_DRIVER", "ATELIER_STORE_DSN",
		"ATELIER_BLOB_BACKEND", "ATELIER_URL_TTL", "ATELIER_SPEECH_PROVIDER",
	} {
		t.Setenv(key, "")
	}

	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.User != "default" {
		t.Errorf("expected user 'default', got %q", settings.User)
	}
	if settings.Store.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", settings.Store.Driver)
	}
	if settings.Store.DSN == "" {
		t.Error("expected a default sqlite path")
	}
	if settings.Blob.Backend != "fs" {
		t.Errorf("expected fs backend, got %q", settings.Blob.Backend)
	}
	if settings.Blob.URLTTL != time.Hour {
		t.Errorf("expected 1h URL TTL, got %v", settings.Blob.URLTTL)
	}
	if settings.Speech.Provider != "gemini" {
		t.Errorf("expected gemini speech provider, got %q", settings.Speech.Provider)
	}
}

func TestNewUnknownStoreDriver(t *testing.T) {
	t.Setenv("ATELIER_STORE_DRIVER", "dynamodb")

	if _, err := New("gemini"); err == nil {
		t.Error("expected error for unknown store driver")
	}
}

func TestNewPostgresRequiresDSN(t *testing.T) {
	t.Setenv("ATELIER_STORE_DRIVER", "postgres")
	t.Setenv("ATELIER_STORE_DSN", "")

	if _, err := New("gemini"); err == nil {
		t.Error("expected error for postgres without a DSN")
	}
}

func TestNewS3RequiresBucket(t *testing.T) {
	t.Setenv("ATELIER_BLOB_BACKEND", "s3")
	t.Setenv("ATELIER_S3_BUCKET", "")

	if _, err := New("gemini"); err == nil {
		t.Error("expected error for s3 without a bucket")
	}
}

func TestNewInvalidURLTTL(t *testing.T) {
	t.Setenv("ATELIER_URL_TTL", "soon")

	if _, err := New("gemini"); err == nil {
		t.Error("expected error for invalid ATELIER_URL_TTL")
	}
}

func TestNewUnknownSpeechProvider(t *testing.T) {
	t.Setenv("ATELIER_SPEECH_PROVIDER", "espeak")

	if _, err := New("gemini"); err == nil {
		t.Error("expected error for unknown speech provider")
	}
}

func TestAPIKeyForValidProvider(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Setenv("OPENAI_API_KEY", "test-key")
	defer os.Setenv("OPENAI_API_KEY", original)

	key, err := APIKeyFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "test-key" {
		t.Errorf("expected 'test-key', got %q", key)
	}
}

func TestAPIKeyForMissing(t *testing.T) {
	original := os.Getenv("OPENAI_API_KEY")
	os.Unsetenv("OPENAI_API_KEY")
	defer os.Setenv("OPENAI_API_KEY", original)

	_, err := APIKeyFor("openai")
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestModelFor(t *testing.T) {
	model, err := ModelFor("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model == "" {
		t.Error("expected non-empty model")
	}
}

func TestModelForEnvironmentOverride(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-3-pro")

	model, err := ModelFor("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "gemini-3-pro" {
		t.Errorf("expected environment override, got %q", model)
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	original := os.Getenv("LLM_MAX_TOKENS")
	os.Setenv("LLM_MAX_TOKENS", "not-a-number")
	defer os.Setenv("LLM_MAX_TOKENS", original)

	_, err := New("openai")
	if err == nil {
		t.Error("expected error for invalid LLM_MAX_TOKENS")
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	if len(providers) == 0 {
		t.Error("expected at least one supported provider")
	}
}
