// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	User   string
	LLM    LLMConfig
	Speech SpeechConfig
	Store  StoreConfig
	Blob   BlobConfig
}

// LLMConfig holds chat provider configuration.
type LLMConfig struct {
	Provider    string
	Model       string
	MaxTokens   uint32
	Temperature float64
}

// SpeechConfig holds speech synthesis and transcription configuration.
type SpeechConfig struct {
	Provider string
	Voice    string
}

// StoreConfig holds row-store configuration.
type StoreConfig struct {
	Driver   string
	DSN      string
	Database string
}

// BlobConfig holds object-store configuration.
type BlobConfig struct {
	Backend   string
	Dir       string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	URLTTL    time.Duration
}

// providerInfo holds configuration for a specific chat provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_MODEL", "gemini-3-flash", "GEMINI_API_KEY"},
	"openai":    {"OPENAI_MODEL", "gpt-5.2", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-opus-4-5-20251101", "ANTHROPIC_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// defaultSqlitePath is where the SQLite store lives unless overridden.
const defaultSqlitePath = "~/.atelier/atelier.db"

// New creates settings for the specified chat provider, loading values from
// environment variables. An empty provider falls back to ATELIER_PROVIDER,
// then to gemini. Returns an error if the provider, store driver, or blob
// backend is unknown, or if environment variables contain invalid values.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = os.Getenv("ATELIER_PROVIDER")
	}
	if provider == "" {
		provider = "gemini"
	}
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 4096)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	// Get model from environment or use default
	model := os.Getenv(info.modelEnv)
	if model == "" {
		model = info.defaultModel
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return Settings{}, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return Settings{}, err
	}

	blob, err := loadBlobConfig()
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		User: getEnv("ATELIER_USER", "default"),
		LLM: LLMConfig{
			Provider:    provider,
			Model:       model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Speech: speech,
		Store:  store,
		Blob:   blob,
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
// Use this only when configuration errors should be fatal.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

func loadSpeechConfig() (SpeechConfig, error) {
	provider := strings.ToLower(getEnv("ATELIER_SPEECH_PROVIDER", "gemini"))
	switch provider {
	case "gemini", "openai":
	default:
		return SpeechConfig{}, fmt.Errorf("unknown speech provider: %q (want gemini or openai)", provider)
	}

	// An empty voice selects the engine's default.
	return SpeechConfig{
		Provider: provider,
		Voice:    os.Getenv("ATELIER_VOICE"),
	}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnv("ATELIER_STORE_DRIVER", "sqlite"))
	dsn := os.Getenv("ATELIER_STORE_DSN")

	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = defaultSqlitePath
		}
		expanded, err := expandHome(dsn)
		if err != nil {
			return StoreConfig{}, err
		}
		dsn = expanded
	case "postgres", "mongo":
		if dsn == "" {
			return StoreConfig{}, fmt.Errorf("ATELIER_STORE_DSN is required for the %s driver", driver)
		}
	case "memory":
		// No DSN.
	default:
		return StoreConfig{}, fmt.Errorf("unknown store driver: %q (want sqlite, postgres, mongo, or memory)", driver)
	}

	return StoreConfig{
		Driver:   driver,
		DSN:      dsn,
		Database: os.Getenv("ATELIER_STORE_DATABASE"),
	}, nil
}

func loadBlobConfig() (BlobConfig, error) {
	backend := strings.ToLower(getEnv("ATELIER_BLOB_BACKEND", "fs"))

	ttl, err := getEnvDuration("ATELIER_URL_TTL", time.Hour)
	if err != nil {
		return BlobConfig{}, err
	}

	cfg := BlobConfig{
		Backend:   backend,
		Dir:       os.Getenv("ATELIER_BLOB_DIR"),
		Bucket:    os.Getenv("ATELIER_S3_BUCKET"),
		Region:    getEnv("ATELIER_S3_REGION", "us-east-1"),
		Endpoint:  os.Getenv("ATELIER_S3_ENDPOINT"),
		AccessKey: os.Getenv("ATELIER_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("ATELIER_S3_SECRET_KEY"),
		URLTTL:    ttl,
	}

	switch backend {
	case "fs":
	case "s3":
		if cfg.Bucket == "" {
			return BlobConfig{}, fmt.Errorf("ATELIER_S3_BUCKET is required for the s3 backend")
		}
	default:
		return BlobConfig{}, fmt.Errorf("unknown blob backend: %q (want fs or s3)", backend)
	}

	return cfg, nil
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking environment first.
func ModelFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	if val := os.Getenv(info.modelEnv); val != "" {
		return val, nil
	}
	return info.defaultModel, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
