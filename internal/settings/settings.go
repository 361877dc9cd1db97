// Package settings loads the daemon's YAML settings file: model
// configurations, prompt definitions, and runtime options.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPrompt is returned when a prompt id has no definition.
var ErrUnknownPrompt = errors.New("prompt not found in configuration")

// Model describes one configured completion backend model.
type Model struct {
	Model       string   `yaml:"model"`                  // backend model name, e.g. "llama3.1:8b"
	Host        string   `yaml:"host,omitempty"`         // backend host URL; empty means the default local instance
	DisplayName string   `yaml:"display_name,omitempty"` // name shown in notifications
	Temperature *float64 `yaml:"temperature,omitempty"`
	NumCtx      int      `yaml:"num_ctx,omitempty"`
}

// Message is one message template inside a prompt definition. Content is
// either inline or loaded from a file referenced relative to the settings
// file. Exactly one of Content/File is expected; File wins when both are set.
type Message struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content,omitempty"`
	File    string `yaml:"file,omitempty"`
}

// Prompt is one user-defined prompt preset.
type Prompt struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Model       string    `yaml:"model,omitempty"` // model key; empty falls back to DefaultModel
	Tags        []string  `yaml:"tags,omitempty"`
	Messages    []Message `yaml:"messages"`
}

// Settings is the full parsed settings file.
type Settings struct {
	DefaultModel   string           `yaml:"default_model"`
	MaxConcurrent  int              `yaml:"max_concurrent,omitempty"`  // 0 = unlimited
	HistoryEntries int              `yaml:"history_entries,omitempty"` // bounded history log size
	Notifications  *bool            `yaml:"notifications,omitempty"`   // nil = enabled
	Models         map[string]Model `yaml:"models"`
	Prompts        []Prompt         `yaml:"prompts"`

	baseDir string
}

// Default returns settings with the documented defaults and no models or
// prompts configured.
func Default() Settings {
	return Settings{
		HistoryEntries: 50,
		MaxConcurrent:  0,
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "prompterd", "settings.yaml")
}

// Load reads and validates the settings file at path. A missing file returns
// the defaults so a fresh install starts cleanly; a malformed file is an
// error.
func Load(path string) (Settings, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse settings: %w", err)
	}
	cfg.baseDir = filepath.Dir(path)

	if cfg.HistoryEntries <= 0 {
		cfg.HistoryEntries = 50
	}
	if cfg.HistoryEntries > 1000 {
		cfg.HistoryEntries = 1000
	}
	if cfg.MaxConcurrent < 0 {
		cfg.MaxConcurrent = 0
	}
	if cfg.MaxConcurrent > 256 {
		cfg.MaxConcurrent = 256
	}
	for id, seen := range promptIDCounts(cfg.Prompts) {
		if seen > 1 {
			return cfg, fmt.Errorf("parse settings: duplicate prompt id %q", id)
		}
	}
	return cfg, nil
}

func promptIDCounts(prompts []Prompt) map[string]int {
	counts := make(map[string]int, len(prompts))
	for _, p := range prompts {
		counts[p.ID]++
	}
	return counts
}

// NotificationsEnabled reports whether user-facing notifications should be
// emitted. Enabled unless the settings file turns them off.
func (s Settings) NotificationsEnabled() bool {
	return s.Notifications == nil || *s.Notifications
}

// PromptByID returns the prompt definition with the given id.
func (s Settings) PromptByID(id string) (Prompt, bool) {
	for _, p := range s.Prompts {
		if p.ID == id {
			return p, true
		}
	}
	return Prompt{}, false
}

// HasModel reports whether a model key is configured.
func (s Settings) HasModel(key string) bool {
	_, ok := s.Models[key]
	return ok
}

// MessageContent resolves a message template's content, loading file-backed
// content relative to the settings file directory.
func (s Settings) MessageContent(m Message) (string, error) {
	if m.File == "" {
		return m.Content, nil
	}
	path := m.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load message content from %s: %w", m.File, err)
	}
	return string(data), nil
}
