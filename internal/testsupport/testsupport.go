// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"erecord/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory so tests never touch real user data.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Simplifile.APIToken = "tok-test"
	cfg.Simplifile.SubmitterID = "SCCSAA"
	cfg.Submission.DefaultCounty = "SCCP49"
	cfg.Submission.BackoffSeconds = 0
	cfg.Notifications.NtfyTopic = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
