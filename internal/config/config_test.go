package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
db: /tmp/custom.db
format: json
urgency:
  blocking: 12
  priority.critical: 15
`)

	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB != "/tmp/custom.db" {
		t.Errorf("DB = %q", cfg.DB)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q", cfg.Format)
	}
	if cfg.Urgency["blocking"] != 12 || cfg.Urgency["priority.critical"] != 15 {
		t.Errorf("Urgency = %v", cfg.Urgency)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "db: [unclosed")

	if _, err := Load(filepath.Join(dir, FileName)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFind_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "format: pretty\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if cfg == nil || cfg.Format != "pretty" {
		t.Fatalf("expected config from ancestor, got %+v", cfg)
	}
}

func TestFind_NearestWins(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "format: pretty\n")
	nested := filepath.Join(root, "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, nested, "format: json\n")

	cfg, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("expected nearest config, got %q", cfg.Format)
	}
}

func TestFind_NoneIsNotAnError(t *testing.T) {
	cfg, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestUrgencyEntries(t *testing.T) {
	cfg := &Config{Urgency: map[string]float64{
		"blocking":      9,
		"age":           1,
		"priority.high": 7,
	}}

	entries := cfg.UrgencyEntries()
	wantKeys := []string{"urgency.age", "urgency.blocking", "urgency.priority.high"}
	if len(entries) != len(wantKeys) {
		t.Fatalf("entries %v", entries)
	}
	for i, k := range wantKeys {
		if entries[i].Key != k {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Key, k)
		}
	}
	if entries[1].Value != 9 {
		t.Errorf("blocking = %v, want 9", entries[1].Value)
	}
}
