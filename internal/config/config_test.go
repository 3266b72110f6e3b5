package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("SIMSCAN_LOG_LEVEL", "")
	t.Setenv("SIMSCAN_STORE_PATH", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tokenizer.Preset != "python" || cfg.Store.Type != "memory" || cfg.Report.Format != "auto" {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if len(cfg.Collector.Extensions) != 1 || cfg.Collector.Extensions[0] != ".py" {
		t.Errorf("Extensions = %v, want [.py]", cfg.Collector.Extensions)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("SIMSCAN_LOG_LEVEL", "")
	t.Setenv("SIMSCAN_STORE_PATH", "")
	path := filepath.Join(t.TempDir(), "simscan.yaml")
	data := `
collector:
  extensions: [".go"]
tokenizer:
  preset: go
  reserved: ["self"]
store:
  type: SQLite
  path: /tmp/x.db
report:
  format: table
  top: 5
  min_score: 0.01
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tokenizer.Preset != "go" || len(cfg.Tokenizer.Reserved) != 1 {
		t.Errorf("Tokenizer = %+v", cfg.Tokenizer)
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.Path != "/tmp/x.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Report.MinScore == nil || *cfg.Report.MinScore != 0.01 || cfg.Report.Top != 5 {
		t.Errorf("Report = %+v", cfg.Report)
	}
	// Unset sections keep their defaults.
	if cfg.Logging.Level != "info" || !cfg.Collector.SkipHidden {
		t.Errorf("Logging = %+v, Collector = %+v", cfg.Logging, cfg.Collector)
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"format", "report:\n  format: xml\n", ErrUnknownFormat},
		{"store", "store:\n  type: redis\n", ErrUnknownStore},
		{"preset", "tokenizer:\n  preset: cobol\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIMSCAN_LOG_LEVEL", "debug")
	t.Setenv("SIMSCAN_STORE_PATH", "/var/tmp/s.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.Path != "/var/tmp/s.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("SIMSCAN_LOG_LEVEL", "")
	t.Setenv("SIMSCAN_STORE_PATH", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Report.Top = 3
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Report.Top != 3 {
		t.Errorf("Top = %d, want 3", got.Report.Top)
	}
}
