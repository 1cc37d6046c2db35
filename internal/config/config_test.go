package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Port)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("Expected default data dir './data', got %s", cfg.DataDir)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("Expected default cache TTL 15m, got %v", cfg.CacheTTL)
	}
	if cfg.PollInterval != 30*time.Minute {
		t.Errorf("Expected default poll interval 30m, got %v", cfg.PollInterval)
	}
	if len(cfg.DefaultFeeds) == 0 {
		t.Error("Expected a non-empty default feed list")
	}
}

func TestLoad_AIDefaults(t *testing.T) {
	cfg := Load()

	if cfg.AI.BaseURL != "http://localhost:1234" {
		t.Errorf("Expected default AI base URL http://localhost:1234, got %s", cfg.AI.BaseURL)
	}
	if cfg.AI.APIKey != "lm-studio" {
		t.Errorf("Expected default API key 'lm-studio', got %s", cfg.AI.APIKey)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("Expected default AI timeout 30s, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.MaxTokens != 500 {
		t.Errorf("Expected default max tokens 500, got %d", cfg.AI.MaxTokens)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AI_BASE_URL", "http://ai.internal:8000/")
	t.Setenv("POLL_INTERVAL", "5m")
	t.Setenv("DEFAULT_FEEDS", "https://a.example/rss, https://b.example/rss")
	t.Setenv("ENABLE_SWAGGER", "false")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Port)
	}
	if cfg.AI.BaseURL != "http://ai.internal:8000" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.AI.BaseURL)
	}
	if cfg.PollInterval != 5*time.Minute {
		t.Errorf("Expected poll interval 5m, got %v", cfg.PollInterval)
	}
	if len(cfg.DefaultFeeds) != 2 || cfg.DefaultFeeds[1] != "https://b.example/rss" {
		t.Errorf("Expected 2 trimmed feed URLs, got %v", cfg.DefaultFeeds)
	}
	if cfg.EnableSwagger {
		t.Error("Expected swagger to be disabled")
	}
}

func TestLoad_LMStudioHostVars(t *testing.T) {
	t.Setenv("LM_STUDIO_HOST", "192.168.1.10")
	t.Setenv("LM_STUDIO_PORT", "4321")

	cfg := Load()

	if cfg.AI.BaseURL != "http://192.168.1.10:4321" {
		t.Errorf("Expected host/port vars to build base URL, got %s", cfg.AI.BaseURL)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("ENABLE_RATE_LIMIT", "maybe")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Expected fallback port 8080, got %d", cfg.Port)
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Errorf("Expected fallback cache TTL, got %v", cfg.CacheTTL)
	}
	if !cfg.Security.EnableRateLimit {
		t.Error("Expected fallback rate limit enabled")
	}
}
