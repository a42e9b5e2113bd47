package config

import (
	"os"
	"strings"
)

// normalize expands filesystem paths, trims string fields, and applies
// environment fallbacks. It runs after decoding and before validation.
func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return err
	}

	c.Simplifile.BaseURL = strings.TrimRight(strings.TrimSpace(c.Simplifile.BaseURL), "/")
	c.Simplifile.APIToken = strings.TrimSpace(c.Simplifile.APIToken)
	c.Simplifile.SubmitterID = strings.TrimSpace(c.Simplifile.SubmitterID)
	if c.Simplifile.APIToken == "" {
		c.Simplifile.APIToken = strings.TrimSpace(os.Getenv("SIMPLIFILE_API_TOKEN"))
	}

	c.Submission.DefaultCounty = strings.ToUpper(strings.TrimSpace(c.Submission.DefaultCounty))
	if c.Submission.TimeoutSeconds <= 0 {
		c.Submission.TimeoutSeconds = Default().Submission.TimeoutSeconds
	}
	if c.Submission.RetryMax < 0 {
		c.Submission.RetryMax = 0
	}
	if c.Submission.BackoffSeconds <= 0 {
		c.Submission.BackoffSeconds = Default().Submission.BackoffSeconds
	}
	if c.Submission.Workers <= 0 {
		c.Submission.Workers = Default().Submission.Workers
	}

	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = Default().Notifications.RequestTimeout
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = Default().Logging.Format
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = Default().Logging.Level
	}

	return nil
}
