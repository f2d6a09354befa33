package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.Provider != def.Provider || cfg.Translate != def.Translate || cfg.Output != def.Output {
		t.Errorf("Load() = %+v, expected defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[provider]
name = "anthropic"
timeout = "45s"

[pricing]
input_per_million = 3.0
output_per_million = 15.0

[translate]
batch_size = 20
target_language = "Japanese"

[output]
mode = "full"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.Name != ProviderAnthropic || cfg.Provider.Model != DefaultAnthropicModel {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Provider.Timeout.Duration != 45*time.Second {
		t.Errorf("timeout = %s", cfg.Provider.Timeout)
	}
	if cfg.Pricing.InputPerMillion != 3.0 || cfg.Pricing.OutputPerMillion != 15.0 {
		t.Errorf("pricing = %+v", cfg.Pricing)
	}
	if cfg.Translate.BatchSize != 20 || cfg.Translate.TargetLanguage != "Japanese" {
		t.Errorf("translate = %+v", cfg.Translate)
	}
	if cfg.Translate.SourceLanguage != DefaultConfig().Translate.SourceLanguage {
		t.Errorf("unset keys must keep defaults, got %q", cfg.Translate.SourceLanguage)
	}
	if cfg.Output.Mode != "full" || cfg.Output.Suffix != "_cn" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if DefaultModel(ProviderGemini) != DefaultGeminiModel || DefaultModel("") != DefaultOpenAIModel {
		t.Errorf("DefaultModel mismatch")
	}

	ec := cfg.EngineConfig()
	if ec.BatchSize != 20 || ec.Timeout != 45*time.Second {
		t.Errorf("EngineConfig() = %+v", ec)
	}
	if !strings.Contains(ec.SystemPrompt, "into Japanese") {
		t.Errorf("system prompt does not name the target language")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[provider\nname = 1"},
		{"unknown key", "[translate]\nbatchsize = 3"},
		{"provider", "[provider]\nname = \"local\""},
		{"batch size", "[translate]\nbatch_size = 0"},
		{"mode", "[output]\nmode = \"verbose\""},
		{"timeout", "[provider]\ntimeout = \"soon\""},
	}
	for _, tt := range tests {
		if _, err := Load(writeConfig(t, tt.content)); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.Provider.BaseURL = "https://llm.example.com/v1"
	cfg.Translate.Guidelines = "Keep product names in English."

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config file mode = %v, expected 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("Load(Save(cfg)) = %+v, expected %+v", loaded, cfg)
	}
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg", "xltranslate", "config.toml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
