// Package models defines configuration and the core data types shared
// across the generation and publishing pipelines.
package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level runtime configuration, loaded from a YAML file
// and selectively overridable by CLI flags.
type Config struct {
	KeywordFile string `yaml:"keyword_file"`
	APIKeyFile  string `yaml:"api_key_file"`
	PromptFile  string `yaml:"prompt_file"`
	ContentDir  string `yaml:"content_dir"`
	LedgerDB    string `yaml:"ledger_db"`

	Generation GenerationConfig `yaml:"generation"`
	Images     ImagesConfig     `yaml:"images"`
	Publish    PublishConfig    `yaml:"publish"`
}

// GenerationConfig controls the article generation engine.
type GenerationConfig struct {
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // OpenAI-compatible endpoint, e.g. deepseek
	Language string `yaml:"language"`
	MinChars int    `yaml:"min_chars"`
}

// ImagesConfig controls the image search client.
type ImagesConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	PerPage  int    `yaml:"per_page"`
}

// PublishConfig controls the publishing orchestrator.
type PublishConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	BatchSize       int    `yaml:"batch_size"`
	PauseSeconds    int    `yaml:"pause_seconds"`
	RenderMarkdown  bool   `yaml:"render_markdown"`
}

// Pause returns the inter-batch pause as a duration.
func (p PublishConfig) Pause() time.Duration {
	return time.Duration(p.PauseSeconds) * time.Second
}

// LoadConfig reads and parses the YAML config file at path, then applies
// defaults for anything left unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.SetDefaults()
	return cfg, nil
}

// SetDefaults fills in defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.LedgerDB == "" {
		c.LedgerDB = "seoforge.db"
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.Language == "" {
		c.Generation.Language = "English"
	}
	if c.Generation.MinChars <= 0 {
		c.Generation.MinChars = 2000
	}
	if c.Images.Endpoint == "" {
		c.Images.Endpoint = "https://pixabay.com/api/"
	}
	if c.Images.PerPage <= 0 {
		c.Images.PerPage = 10
	}
	if c.Publish.BatchSize <= 0 {
		c.Publish.BatchSize = 5
	}
	if c.Publish.PauseSeconds <= 0 {
		c.Publish.PauseSeconds = 10
	}
}
