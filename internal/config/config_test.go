package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.News.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}
	if cfg.News.Provider != "newsapi" {
		t.Errorf("expected news provider 'newsapi', got %q", cfg.News.Provider)
	}
	if cfg.Generation.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Generation.Provider)
	}
	if cfg.Generation.MaxTokens != 120 {
		t.Errorf("expected max_tokens 120, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Generation.Temperature != 0.8 {
		t.Errorf("expected temperature 0.8, got %v", cfg.Generation.Temperature)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
generation:
  provider: ollama
  ollama_model: llama3
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Generation.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", cfg.Generation.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Generation.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.Generation.OllamaURL)
	}
	if cfg.News.PageSize != 5 {
		t.Errorf("expected default page_size 5, got %d", cfg.News.PageSize)
	}
	if cfg.Auth.JWTSecretEnv != "SUPABASE_JWT_SECRET" {
		t.Errorf("expected default jwt_secret_env, got %q", cfg.Auth.JWTSecretEnv)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("server: [unterminated")); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.News.Feeds["technology"] == "" {
		t.Error("expected technology feed to be populated from file")
	}
}

func TestResolveConfigPathExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestTimeouts(t *testing.T) {
	cfg := &Config{}
	if cfg.NewsTimeout() != 10*time.Second {
		t.Errorf("expected 10s news fallback, got %v", cfg.NewsTimeout())
	}
	if cfg.GenerationTimeout() != 30*time.Second {
		t.Errorf("expected 30s generation fallback, got %v", cfg.GenerationTimeout())
	}

	cfg.Cache.ProfileTTLSeconds = 60
	if cfg.ProfileTTL() != time.Minute {
		t.Errorf("expected 1m profile ttl, got %v", cfg.ProfileTTL())
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
