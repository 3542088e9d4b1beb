package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	yml := `
server:
  port: 9000
  writeTimeout: 45s
ai:
  provider: gemini
  model: gemini-2.5-flash
storage:
  driver: local
  local:
    dir: /tmp/reports
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"PORT", "AI_PROVIDER", "LOG_LEVEL", "STORAGE_DRIVER", "REPORTS_DIR"} {
		t.Setenv(k, "")
	}
	t.Setenv("AI_MODEL", "gemini-2.5-pro")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.WriteTimeout != 45*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.AI.Provider != "gemini" || cfg.AI.Model != "gemini-2.5-pro" {
		t.Fatalf("ai = %+v", cfg.AI)
	}
	if cfg.Storage.Local.Dir != "/tmp/reports" || cfg.Log.Level != "debug" {
		t.Fatalf("storage/log not loaded: %+v %+v", cfg.Storage.Local, cfg.Log)
	}
	if cfg.Report.FilePrefix != "Achalasia_Report" {
		t.Fatalf("default prefix lost: %q", cfg.Report.FilePrefix)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("an explicit missing file must fail")
	}
}

func TestAPIKeyFallbacks(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"primary", map[string]string{"AI_API_KEY": "a", "LOVABLE_API_KEY": "b"}, "a"},
		{"lovable for gateway", map[string]string{"LOVABLE_API_KEY": "b", "GEMINI_API_KEY": "c"}, "b"},
		{"gemini key ignored by gateway", map[string]string{"GEMINI_API_KEY": "c"}, ""},
		{"gemini provider", map[string]string{"AI_PROVIDER": "gemini", "LOVABLE_API_KEY": "b", "GEMINI_API_KEY": "c"}, "c"},
		{"gemini provider without its key", map[string]string{"AI_PROVIDER": "gemini", "LOVABLE_API_KEY": "b"}, ""},
		{"blank primary skipped", map[string]string{"AI_API_KEY": " ", "LOVABLE_API_KEY": "b"}, "b"},
		{"sample needs no fallback", map[string]string{"AI_PROVIDER": "sample", "LOVABLE_API_KEY": "b"}, ""},
		{"none", map[string]string{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ApplyEnv(env(tt.env))
			if cfg.AI.APIKey != tt.want {
				t.Fatalf("api key = %q, want %q", cfg.AI.APIKey, tt.want)
			}
		})
	}
}

func TestGeminiProviderFromFileUsesGeminiKey(t *testing.T) {
	cfg := Default()
	cfg.AI.Provider = "gemini"
	cfg.ApplyEnv(env(map[string]string{"LOVABLE_API_KEY": "gateway", "GEMINI_API_KEY": "native"}))
	if cfg.AI.APIKey != "native" {
		t.Fatalf("api key = %q, want the Gemini key", cfg.AI.APIKey)
	}
}

func TestRateLimitEnabled(t *testing.T) {
	cfg := Default()
	if !cfg.RateLimitEnabled() {
		t.Fatal("default config should rate limit")
	}
	cfg.Server.RateLimit.RPS = 0
	if cfg.RateLimitEnabled() {
		t.Fatal("rps 0 should disable rate limiting")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("rps 0 must be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errHas string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.ApplyEnv(env(map[string]string{"PORT": "http"})) }, "server.port"},
		{"bad provider", func(c *Config) { c.AI.Provider = "claude" }, "ai.provider"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "ftp" }, "storage.driver"},
		{"minio incomplete", func(c *Config) { c.Storage.Driver = "minio" }, "storage.minio"},
		{"negative rps", func(c *Config) { c.Server.RateLimit.RPS = -1 }, "server.rateLimit.rps"},
		{"azure incomplete", func(c *Config) { c.Storage.Driver = "azure"; c.Storage.Azure.Container = "r" }, "storage.azure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errHas == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errHas) {
				t.Fatalf("err = %v, want mention of %q", err, tt.errHas)
			}
		})
	}
}
