// Package config provides centralized configuration management for the
// rfbreplay CLI. Configuration is loaded from command-line flags with
// environment variable overrides for secrets, applying sensible defaults.
// Invalid configuration causes the application to fail fast with a list of
// helpful error messages.
package config

import (
	"fmt"
	"strings"
)

// Config holds all application configuration for one replay run.
type Config struct {
	// CapturePath is the path to the packet capture file to replay.
	CapturePath string

	// OutputDir is where decoded screenshot artifacts are written when
	// S3Bucket is empty.
	OutputDir string

	// IndexPath is the sqlite database used to record replay history.
	// An empty value disables indexing.
	IndexPath string

	// S3 configuration. When S3Bucket is non-empty, output artifacts are
	// written to S3 instead of OutputDir.
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3Prefix          string
	S3AccessKeyID     string
	S3SecretAccessKey string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
	// LogFormat is one of "json", "text".
	LogFormat string

	// PruneOlderThan, if non-empty, puts the CLI into prune mode: delete
	// index rows older than this duration. Saved screenshot artifacts are
	// not deleted. When a capture path is also given, the replay runs
	// after the prune.
	PruneOlderThan string
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors holds multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration errors:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Default values.
const (
	DefaultOutputDir = "./screenshots"
	DefaultIndexPath = "./rfbreplay.db"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validLogFormats = map[string]bool{"json": true, "text": true}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.CapturePath == "" && c.PruneOlderThan == "" {
		errs = append(errs, ValidationError{
			Field:   "capture",
			Message: "a capture file path is required unless -prune is set",
		})
	}

	if !validLogLevels[c.LogLevel] {
		errs = append(errs, ValidationError{
			Field:   "log-level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error, got %q", c.LogLevel),
		})
	}

	if !validLogFormats[c.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log-format",
			Message: fmt.Sprintf("must be one of json, text, got %q", c.LogFormat),
		})
	}

	if c.S3Bucket != "" && c.S3Region == "" {
		errs = append(errs, ValidationError{
			Field:   "s3-region",
			Message: "required when s3-bucket is set",
		})
	}

	return errs
}

// UsesS3 reports whether output artifacts should be written to S3 instead
// of the local filesystem.
func (c *Config) UsesS3() bool {
	return c.S3Bucket != ""
}
