package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"erecord/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Submission.Workers != 4 {
		t.Fatalf("workers = %d, want default 4", cfg.Submission.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("logging defaults = %s/%s", cfg.Logging.Format, cfg.Logging.Level)
	}
	if cfg.Simplifile.BaseURL != "https://api.simplifile.com" {
		t.Fatalf("base_url = %q", cfg.Simplifile.BaseURL)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := writeConfig(t, `
[simplifile]
base_url = "https://sandbox.simplifile.com/"
submitter_id = " SCCSAA "

[submission]
default_county = "sccp49"
workers = 2

[logging]
level = "DEBUG"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simplifile.BaseURL != "https://sandbox.simplifile.com" {
		t.Fatalf("base_url not trimmed: %q", cfg.Simplifile.BaseURL)
	}
	if cfg.Simplifile.SubmitterID != "SCCSAA" {
		t.Fatalf("submitter_id not trimmed: %q", cfg.Simplifile.SubmitterID)
	}
	if cfg.Submission.DefaultCounty != "SCCP49" {
		t.Fatalf("default_county not uppercased: %q", cfg.Submission.DefaultCounty)
	}
	if cfg.Submission.Workers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.Submission.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)
	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAPITokenEnvFallback(t *testing.T) {
	t.Setenv("SIMPLIFILE_API_TOKEN", "tok-from-env")
	path := writeConfig(t, "")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simplifile.APIToken != "tok-from-env" {
		t.Fatalf("api_token = %q, want env fallback", cfg.Simplifile.APIToken)
	}
}

func TestRequireCredentials(t *testing.T) {
	t.Setenv("SIMPLIFILE_API_TOKEN", "")
	path := writeConfig(t, "")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.RequireCredentials(); err == nil {
		t.Fatal("expected missing credential error")
	}
	cfg.Simplifile.APIToken = "tok"
	cfg.Simplifile.SubmitterID = "SCCSAA"
	if err := cfg.RequireCredentials(); err != nil {
		t.Fatalf("RequireCredentials: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[simplifile]") {
		t.Fatal("sample missing simplifile section")
	}
	// The sample must itself load cleanly.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
