package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
}

// isolate points HOME and XDG at a temp dir and returns the app config dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return filepath.Join(tmpDir, ".config", AppName)
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestInit_WithDefaults(t *testing.T) {
	resetViper()
	isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"input", "java.bin"},
		{"class_name", "com.whatsapp.TextData"},
		{"strict_class", true},
		{"max_blob_size", 16 << 20},
		{"format", "text"},
		{"bytes_encoding", "base64"},
		{"debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.expected {
				t.Errorf("viper.Get(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestInit_MissingConfigCreatesNothing(t *testing.T) {
	resetViper()
	configDir := isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if _, err := os.Stat(configDir); !os.IsNotExist(err) {
		t.Errorf("Init() should not create %s, stat error = %v", configDir, err)
	}
}

func TestInit_ReadsXDGConfig(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", "format: yaml\nbytes_encoding: hex\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetString("format"); got != "yaml" {
		t.Errorf("viper.GetString(format) = %q, want yaml", got)
	}
	if got := viper.GetString("bytes_encoding"); got != "hex" {
		t.Errorf("viper.GetString(bytes_encoding) = %q, want hex", got)
	}
}

func TestInit_PrefersHiddenConfig(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", "input: plain.bin\n")
	writeConfig(t, configDir, ".config.yaml", "input: hidden.bin\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetString("input"); got != "hidden.bin" {
		t.Errorf("viper.GetString(input) = %q, want hidden.bin", got)
	}
}

func TestInit_ReadsLocalConfigFirst(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", "input: xdg.bin")

	localDir := t.TempDir()
	origDir, _ := os.Getwd()
	if err := os.Chdir(localDir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Logf("failed to restore dir: %v", err)
		}
	}()
	writeConfig(t, localDir, "config.yaml", "input: local.bin")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetString("input"); got != "local.bin" {
		t.Errorf("viper.GetString(input) = %q, want local.bin (local config)", got)
	}
}

func TestInit_EnvironmentOverrides(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", "format: yaml\n")
	t.Setenv("TEXTDUMP_FORMAT", "cbor")
	t.Setenv("TEXTDUMP_CLASS_NAME", "com.example.Other")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if settings.Format != "cbor" {
		t.Errorf("Settings.Format = %q, want cbor", settings.Format)
	}
	if settings.ClassName != "com.example.Other" {
		t.Errorf("Settings.ClassName = %q, want com.example.Other", settings.ClassName)
	}
}

func TestInit_InvalidConfigFile(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", "invalid: yaml: content: [[[")

	if err := Init(); err == nil {
		t.Error("Init() should return error for invalid YAML")
	}
}

func TestGet_ExampleConfigIsValid(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", ExampleConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := Settings{
		Input:         "java.bin",
		ClassName:     "com.whatsapp.TextData",
		StrictClass:   true,
		MaxBlobSize:   16777216,
		Format:        "text",
		BytesEncoding: "base64",
		Debug:         false,
	}
	if *settings != want {
		t.Errorf("Get() = %+v, want %+v", *settings, want)
	}
}

func TestGet_AllFields(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", `input: other.bin
class_name: com.example.Note
strict_class: false
max_blob_size: 1024
format: dump
bytes_encoding: hex
debug: true
`)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	want := Settings{
		Input:         "other.bin",
		ClassName:     "com.example.Note",
		StrictClass:   false,
		MaxBlobSize:   1024,
		Format:        "dump",
		BytesEncoding: "hex",
		Debug:         true,
	}
	if *settings != want {
		t.Errorf("Get() = %+v, want %+v", *settings, want)
	}
}

func TestGet_InvalidSettings(t *testing.T) {
	resetViper()
	configDir := isolate(t)
	writeConfig(t, configDir, "config.yaml", "format: xml\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, err := Get()
	if err == nil {
		t.Fatal("Get() should fail for an unknown format")
	}
	if !strings.Contains(err.Error(), "invalid config") || !strings.Contains(err.Error(), "format") {
		t.Errorf("Get() error = %v, want invalid config mentioning format", err)
	}
}

func validSettings() Settings {
	return Settings{
		Input:         "java.bin",
		ClassName:     "com.whatsapp.TextData",
		StrictClass:   true,
		MaxBlobSize:   16 << 20,
		Format:        "text",
		BytesEncoding: "base64",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"empty input", func(s *Settings) { s.Input = "  " }, "input"},
		{"empty class", func(s *Settings) { s.ClassName = "" }, "class_name"},
		{"zero blob size", func(s *Settings) { s.MaxBlobSize = 0 }, "max_blob_size"},
		{"huge blob size", func(s *Settings) { s.MaxBlobSize = MaxBlobLimit + 1 }, "max_blob_size"},
		{"unknown format", func(s *Settings) { s.Format = "json" }, "format"},
		{"unknown encoding", func(s *Settings) { s.BytesEncoding = "base32" }, "bytes_encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_JoinsAllErrors(t *testing.T) {
	s := Settings{}
	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() of zero Settings should fail")
	}
	for _, key := range []string{"input", "class_name", "max_blob_size", "format", "bytes_encoding"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate() error missing %q: %v", key, err)
		}
	}
}

func TestConstants(t *testing.T) {
	if AppName != "textdump" {
		t.Errorf("AppName = %q, want %q", AppName, "textdump")
	}
	if ConfigType != "yaml" {
		t.Errorf("ConfigType = %q, want %q", ConfigType, "yaml")
	}
}

func TestExampleConfig_ContainsExpectedKeys(t *testing.T) {
	expectedKeys := []string{
		"input",
		"class_name",
		"strict_class",
		"max_blob_size",
		"format",
		"bytes_encoding",
		"debug",
	}

	for _, key := range expectedKeys {
		if !strings.Contains(ExampleConfig, key+":") {
			t.Errorf("ExampleConfig missing key: %s", key)
		}
	}
}
