// Package config loads and saves the xltranslate configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-5.2"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultGeminiModel    = "gemini-2.5-flash"
)

// DefaultModel returns the default model of a provider.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return DefaultAnthropicModel
	case ProviderGemini:
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

type Config struct {
	Provider  ProviderConfig    `toml:"provider"`
	Pricing   translate.Pricing `toml:"pricing"`
	Translate TranslateConfig   `toml:"translate"`
	Output    OutputConfig      `toml:"output"`
}

type ProviderConfig struct {
	Name       string   `toml:"name"`
	Model      string   `toml:"model"`
	BaseURL    string   `toml:"base_url"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

type TranslateConfig struct {
	BatchSize      int    `toml:"batch_size"`
	SourceLanguage string `toml:"source_language"`
	TargetLanguage string `toml:"target_language"`
	// Guidelines replaces the default translation guidelines of the
	// system prompt. The technical rules are always kept.
	Guidelines string `toml:"guidelines"`
	Attempts   int    `toml:"attempts"`
}

type OutputConfig struct {
	Suffix string `toml:"suffix"`
	Font   string `toml:"font"`
	Mode   string `toml:"mode"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Name:       ProviderOpenAI,
			Model:      DefaultOpenAIModel,
			Timeout:    Duration{translate.DefaultTimeout},
			MaxRetries: 0,
		},
		Pricing: translate.DefaultPricing(),
		Translate: TranslateConfig{
			BatchSize:      translate.DefaultBatchSize,
			SourceLanguage: translate.DefaultSourceLanguage,
			TargetLanguage: translate.DefaultTargetLanguage,
			Attempts:       1,
		},
		Output: OutputConfig{
			Suffix: "_cn",
			Font:   "Microsoft YaHei",
			Mode:   "standard",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/xltranslate/config.toml, falling back
// to ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "xltranslate", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "xltranslate", "config.toml")
}

// Load reads the configuration at path. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // use defaults
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !md.IsDefined("provider", "model") {
		cfg.Provider.Model = DefaultModel(cfg.Provider.Name)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate reports values no run could use.
func (c Config) Validate() error {
	switch c.Provider.Name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q (must be %s, %s or %s)", c.Provider.Name, ProviderOpenAI, ProviderAnthropic, ProviderGemini)
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("provider model is empty")
	}
	if c.Provider.Timeout.Duration < 0 || c.Provider.MaxRetries < 0 {
		return fmt.Errorf("provider timeout and max_retries must not be negative")
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", c.Translate.BatchSize)
	}
	if c.Pricing.InputPerMillion < 0 || c.Pricing.OutputPerMillion < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	switch c.Output.Mode {
	case "cells", "standard", "full":
	default:
		return fmt.Errorf("invalid mode %q (must be cells, standard, or full)", c.Output.Mode)
	}
	return nil
}

// EngineConfig returns the translation engine settings of c.
func (c Config) EngineConfig() translate.Config {
	return translate.Config{
		BatchSize: c.Translate.BatchSize,
		Timeout:   c.Provider.Timeout.Duration,
		Pricing:   c.Pricing,
		SystemPrompt: translate.SystemPrompt(
			c.Translate.SourceLanguage,
			c.Translate.TargetLanguage,
			c.Translate.Guidelines,
		),
	}
}
