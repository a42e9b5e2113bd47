// Package config loads, normalizes, and validates the TOML configuration
// for the e-recording batch submitter.
package config
