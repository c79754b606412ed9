package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	News       News       `yaml:"news"`
	Generation Generation `yaml:"generation"`
	Auth       Auth       `yaml:"auth"`
	Cache      Cache      `yaml:"cache"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type News struct {
	Provider       string            `yaml:"provider"`
	APIKeyEnv      string            `yaml:"api_key_env"`
	BaseURL        string            `yaml:"base_url"`
	Language       string            `yaml:"language"`
	PageSize       int               `yaml:"page_size"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Feeds          map[string]string `yaml:"feeds"`
}

type Generation struct {
	Provider       string  `yaml:"provider"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	OllamaURL      string  `yaml:"ollama_url"`
	OllamaModel    string  `yaml:"ollama_model"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

type Auth struct {
	JWTSecretEnv string `yaml:"jwt_secret_env"`
}

type Cache struct {
	RedisURL          string `yaml:"redis_url"`
	ProfileTTLSeconds int    `yaml:"profile_ttl_seconds"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigDir returns the XDG config directory for draftspark.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "draftspark")
}

// DataDir returns the XDG data directory for draftspark.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "draftspark")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/draftspark/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'draftspark init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		News: News{
			Provider:       "newsapi",
			APIKeyEnv:      "NEWS_API_KEY",
			BaseURL:        "https://newsapi.org/v2",
			Language:       "en",
			PageSize:       5,
			TimeoutSeconds: 10,
		},
		Generation: Generation{
			Provider:       "openai",
			Model:          "gpt-4.1-2025-04-14",
			BaseURL:        "https://api.openai.com/v1",
			OllamaURL:      "http://localhost:11434",
			OllamaModel:    "qwen2.5:7b",
			APIKeyEnv:      "OPENAI_API_KEY",
			MaxTokens:      120,
			Temperature:    0.8,
			TimeoutSeconds: 30,
		},
		Auth:    Auth{JWTSecretEnv: "SUPABASE_JWT_SECRET"},
		Cache:   Cache{ProfileTTLSeconds: 300},
		Server:  Server{Host: "127.0.0.1", Port: 8000, AllowedOrigins: "*"},
		Logging: Logging{Level: "INFO", Format: "json"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// NewsTimeout bounds a single live headline fetch.
func (c *Config) NewsTimeout() time.Duration {
	return seconds(c.News.TimeoutSeconds, 10)
}

// GenerationTimeout bounds a single model call.
func (c *Config) GenerationTimeout() time.Duration {
	return seconds(c.Generation.TimeoutSeconds, 30)
}

// ProfileTTL is how long a cached profile-existence answer stays valid.
func (c *Config) ProfileTTL() time.Duration {
	return seconds(c.Cache.ProfileTTLSeconds, 300)
}

func seconds(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Second
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
