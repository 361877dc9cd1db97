package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings file: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.HistoryEntries != 50 {
		t.Fatalf("HistoryEntries = %d, want 50", cfg.HistoryEntries)
	}
	if cfg.MaxConcurrent != 0 {
		t.Fatalf("MaxConcurrent = %d, want 0 (unlimited)", cfg.MaxConcurrent)
	}
	if !cfg.NotificationsEnabled() {
		t.Fatal("notifications should default to enabled")
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeSettings(t, `
default_model: small
max_concurrent: 3
history_entries: 10
notifications: false
models:
  small:
    model: llama3.2:3b
    display_name: Llama Small
  big:
    model: llama3.1:70b
    host: http://gpu-box:11434
prompts:
  - id: fix-grammar
    name: Fix Grammar
    model: big
    tags: [writing]
    messages:
      - role: system
        content: You fix grammar.
      - role: user
        content: "{{clipboard}}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultModel != "small" {
		t.Fatalf("DefaultModel = %q", cfg.DefaultModel)
	}
	if cfg.MaxConcurrent != 3 || cfg.HistoryEntries != 10 {
		t.Fatalf("limits = %d/%d", cfg.MaxConcurrent, cfg.HistoryEntries)
	}
	if cfg.NotificationsEnabled() {
		t.Fatal("notifications: false should disable notifications")
	}
	if !cfg.HasModel("big") || cfg.Models["big"].Host != "http://gpu-box:11434" {
		t.Fatalf("model config not parsed: %+v", cfg.Models)
	}

	p, ok := cfg.PromptByID("fix-grammar")
	if !ok {
		t.Fatal("PromptByID should find the prompt")
	}
	if p.Model != "big" || len(p.Messages) != 2 {
		t.Fatalf("unexpected prompt: %+v", p)
	}
}

func TestLoadMalformedFileIsError(t *testing.T) {
	path := writeSettings(t, "default_model: [oops")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed YAML should be an error")
	}
}

func TestLoadRejectsDuplicatePromptIDs(t *testing.T) {
	path := writeSettings(t, `
prompts:
  - id: twice
    name: A
    messages: [{role: user, content: a}]
  - id: twice
    name: B
    messages: [{role: user, content: b}]
`)
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate prompt id") {
		t.Fatalf("expected duplicate prompt id error, got %v", err)
	}
}

func TestLoadClampsLimits(t *testing.T) {
	path := writeSettings(t, `
max_concurrent: 9999
history_entries: 100000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxConcurrent != 256 {
		t.Fatalf("MaxConcurrent = %d, want clamp to 256", cfg.MaxConcurrent)
	}
	if cfg.HistoryEntries != 1000 {
		t.Fatalf("HistoryEntries = %d, want clamp to 1000", cfg.HistoryEntries)
	}

	path = writeSettings(t, "max_concurrent: -4\n")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxConcurrent != 0 {
		t.Fatalf("MaxConcurrent = %d, want 0", cfg.MaxConcurrent)
	}
}

// ---------------------------------------------------------------------------
// Message content
// ---------------------------------------------------------------------------

func TestMessageContentInline(t *testing.T) {
	cfg := Default()
	got, err := cfg.MessageContent(Message{Role: "user", Content: "hello"})
	if err != nil {
		t.Fatalf("MessageContent failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("content = %q", got)
	}
}

func TestMessageContentFromFile(t *testing.T) {
	path := writeSettings(t, `
prompts:
  - id: long
    name: Long System Prompt
    messages:
      - role: system
        file: system.txt
`)
	sysPath := filepath.Join(filepath.Dir(path), "system.txt")
	if err := os.WriteFile(sysPath, []byte("file-backed instructions"), 0o644); err != nil {
		t.Fatalf("write prompt file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p, _ := cfg.PromptByID("long")
	got, err := cfg.MessageContent(p.Messages[0])
	if err != nil {
		t.Fatalf("MessageContent failed: %v", err)
	}
	if got != "file-backed instructions" {
		t.Fatalf("content = %q", got)
	}
}

func TestMessageContentMissingFile(t *testing.T) {
	path := writeSettings(t, "default_model: x\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := cfg.MessageContent(Message{File: "gone.txt"}); err == nil {
		t.Fatal("missing file should be an error")
	}
}
