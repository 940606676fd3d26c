package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rupor-github/gencfg"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}

	if cfg.Logging.ConsoleLogger.Level != "normal" {
		t.Errorf("Default console level = %s, want normal", cfg.Logging.ConsoleLogger.Level)
	}

	age, err := cfg.Cache.MaxAgeDuration()
	if err != nil {
		t.Errorf("Default cache max_age does not parse: %v", err)
	}
	if age != 720*time.Hour {
		t.Errorf("Default cache max_age = %v, want 720h", age)
	}

	if !strings.Contains(cfg.Output.NameTemplate, "{{") {
		t.Errorf("Default name template lost its template syntax: %q", cfg.Output.NameTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
library:
  roots:
    - /books
    - /more books
  catalog_path: ` + filepath.Join(tmpDir, "unbind.db") + `
cache:
  max_age: 24h
output:
  name_template: "{{.Title}}"
logging:
  console:
    level: none
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}

	if len(cfg.Library.Roots) != 2 || cfg.Library.Roots[1] != "/more books" {
		t.Errorf("Roots = %v", cfg.Library.Roots)
	}

	// values absent from the file keep template defaults
	if cfg.Cache.Path != "cache" {
		t.Errorf("Cache.Path = %s, want template default", cfg.Cache.Path)
	}

	age, err := cfg.Cache.MaxAgeDuration()
	if err != nil || age != 24*time.Hour {
		t.Errorf("max_age = %v (%v), want 24h", age, err)
	}

	if cfg.Output.NameTemplate != "{{.Title}}" {
		t.Errorf("NameTemplate = %q", cfg.Output.NameTemplate)
	}

	if cfg.Logging.ConsoleLogger.Level != "none" {
		t.Errorf("Console level = %s, want none", cfg.Logging.ConsoleLogger.Level)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
library:
  roots: []
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
cache:
  max_age: 1h
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationError(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_values.yaml")

	// Invalid version number
	configWithInvalidVersion := `version: 2
cache:
  max_age: 1h
`

	if err := os.WriteFile(configPath, []byte(configWithInvalidVersion), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected validation error for invalid version")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestCacheConfig_MaxAge(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "720h", want: 720 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "soon", wantErr: true},
		{in: "-5h", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := CacheConfig{Path: "cache", MaxAge: tc.in}.MaxAgeDuration()
		if tc.wantErr {
			if err == nil {
				t.Errorf("MaxAgeDuration(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("MaxAgeDuration(%q) = %v, %v, want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Library: LibraryConfig{
			Roots:       []string{"/books"},
			CatalogPath: "unbind.db",
			CoversPath:  "covers",
		},
		Cache: CacheConfig{
			Path:   "cache",
			MaxAge: "240h",
		},
		Output: OutputConfig{
			NameTemplate: "{{.Title}}",
		},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Dump() returned empty data")
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Version != cfg.Version {
		t.Errorf("Version mismatch after dump/load: got %d, want %d", cfg2.Version, cfg.Version)
	}
	if cfg2.Cache.MaxAge != "240h" {
		t.Errorf("Cache.MaxAge after dump/load = %q", cfg2.Cache.MaxAge)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestCleanFileName(t *testing.T) {
	if got := CleanFileName("a" + string(os.PathSeparator) + "b"); strings.ContainsRune(got, os.PathSeparator) {
		t.Errorf("CleanFileName kept path separator: %q", got)
	}
	if got := CleanFileName(""); got != "_bad_file_name_" {
		t.Errorf("CleanFileName(empty) = %q", got)
	}
}
