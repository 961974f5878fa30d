package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeService()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.IdentityPath) == "" {
		// Shared well-known location so repeated runs reuse identifiers.
		c.Paths.IdentityPath = filepath.Join(os.TempDir(), "upscale_client_ids.json")
	} else if c.Paths.IdentityPath, err = expandPath(c.Paths.IdentityPath); err != nil {
		return fmt.Errorf("paths.identity_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeService() {
	c.Service.BaseURL = strings.TrimRight(strings.TrimSpace(c.Service.BaseURL), "/")
	if c.Service.Scale == 0 {
		c.Service.Scale = defaultScale
	}
	if c.Service.PollInterval == 0 {
		c.Service.PollInterval = defaultPollInterval
	}
	if c.Service.MaxAttempts == 0 {
		c.Service.MaxAttempts = defaultMaxAttempts
	}
	if c.Service.RequestTimeout == 0 {
		c.Service.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeOutput() {
	if c.Output.DPI == 0 {
		c.Output.DPI = defaultDPI
	}
	if c.Output.JPEGQuality == 0 {
		c.Output.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
