package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError describes one or more invalid configuration values.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid configuration: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid configuration (%d problems): %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

// Validate checks structural configuration invariants. Credentials are not
// required here; they are checked when a command actually contacts the
// recording service, so offline commands keep working without them.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must be set")
	}

	if c.Simplifile.BaseURL == "" {
		problems = append(problems, "simplifile.base_url must be set")
	} else if parsed, err := url.Parse(c.Simplifile.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		problems = append(problems, fmt.Sprintf("simplifile.base_url %q is not a valid URL", c.Simplifile.BaseURL))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q must be debug, info, warn, or error", c.Logging.Level))
	}

	if c.Submission.Workers > 32 {
		problems = append(problems, "submission.workers must be 32 or fewer")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// RequireCredentials verifies that the settings needed to talk to the
// recording service are present.
func (c *Config) RequireCredentials() error {
	var problems []string
	if c.Simplifile.APIToken == "" {
		problems = append(problems, "simplifile.api_token must be set (or export SIMPLIFILE_API_TOKEN)")
	}
	if c.Simplifile.SubmitterID == "" {
		problems = append(problems, "simplifile.submitter_id must be set")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
