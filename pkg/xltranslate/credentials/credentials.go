// Package credentials stores and looks up provider API keys.
//
// Keys are kept in $XDG_DATA_HOME/xltranslate/auth.json (default
// ~/.local/share/xltranslate/auth.json) with 0600 permissions, keyed by
// provider name.
//
// Lookup order:
//  1. --api-key flag
//  2. XLTRANSLATE_API_KEY environment variable
//  3. the provider's own variable (OPENAI_API_KEY, ANTHROPIC_API_KEY,
//     GEMINI_API_KEY)
//  4. the credential store
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dataDirName = "xltranslate"
	fileName    = "auth.json"

	// EnvAPIKey overrides the key of every provider.
	EnvAPIKey = "XLTRANSLATE_API_KEY"
)

// providerEnv maps provider names to their SDK environment variables.
var providerEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
}

// Entry is the stored credential of one provider.
type Entry struct {
	Key     string `json:"key"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// Store holds all provider credentials, keyed by provider name.
type Store map[string]*Entry

// Source names where a key was found.
type Source string

const (
	SourceNone  Source = ""
	SourceFlag  Source = "flag"
	SourceEnv   Source = "environment"
	SourceStore Source = "auth.json"
)

// dataDir returns the XDG data directory for xltranslate.
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// FilePath returns the auth.json path.
func FilePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := FilePath()
	if err != nil {
		return make(Store)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := FilePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// Get returns the entry for a provider, or nil if not found.
func Get(provider string) *Entry {
	return Load()[provider]
}

// Set stores the credential of a provider (upsert).
func Set(provider string, entry *Entry) error {
	store := Load()
	store[provider] = entry
	return Save(store)
}

// Remove deletes the credential of a provider.
func Remove(provider string) error {
	store := Load()
	if _, ok := store[provider]; !ok {
		return nil // Nothing to delete
	}
	delete(store, provider)
	return Save(store)
}

// Resolve returns the API key for provider and where it came from.
func Resolve(provider, flagKey string) (string, Source) {
	if key := strings.TrimSpace(flagKey); key != "" {
		return key, SourceFlag
	}
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		return key, SourceEnv
	}
	if env, ok := providerEnv[provider]; ok {
		if key := strings.TrimSpace(os.Getenv(env)); key != "" {
			return key, SourceEnv
		}
	}
	if e := Get(provider); e != nil && e.Key != "" {
		return e.Key, SourceStore
	}
	return "", SourceNone
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
