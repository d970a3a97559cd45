package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release", cfg.GinMode)
	}
	if cfg.APIBasePath != "/api" {
		t.Errorf("APIBasePath = %q; want /api", cfg.APIBasePath)
	}
	if cfg.BigCommerce.APIURL != "https://api.bigcommerce.com" {
		t.Errorf("BC_API_URL default = %q", cfg.BigCommerce.APIURL)
	}
	if cfg.GoogleAI.Model != "models/chat-bison-001" {
		t.Errorf("model default = %q", cfg.GoogleAI.Model)
	}
	if cfg.GoogleAI.Temperature != 0.5 {
		t.Errorf("temperature default = %v", cfg.GoogleAI.Temperature)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "warning") // normalized to warn
	t.Setenv("GIN_MODE", "bogus")    // normalized to release
	t.Setenv("BC_TIMEOUT", "3s")
	t.Setenv("GOOGLE_AI_TEMPERATURE", "0.9")
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
	if cfg.GinMode != "release" {
		t.Errorf("GinMode = %q; want release", cfg.GinMode)
	}
	if cfg.BigCommerce.Timeout != 3*time.Second {
		t.Errorf("BC timeout = %v", cfg.BigCommerce.Timeout)
	}
	if cfg.GoogleAI.Temperature != 0.9 {
		t.Errorf("temperature = %v", cfg.GoogleAI.Temperature)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q; want /api/v2", cfg.APIBasePath)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		key, val string
	}{
		{"LOG_LEVEL", "loud"},
		{"GOOGLE_AI_TEMPERATURE", "1.5"},
		{"OTEL_TRACES_SAMPLER_ARG", "2"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil {
				t.Fatalf("%s=%s: expected validation error", tc.key, tc.val)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{
		"":        "/",
		"/":       "/",
		"api":     "/api",
		"/api/":   "/api",
		"/api/v2": "/api/v2",
	}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q; want %q", in, got, want)
		}
	}
}
