package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateService(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateService() error {
	if strings.TrimSpace(c.Service.BaseURL) == "" {
		return errors.New("service.base_url must be set")
	}
	if c.Service.Scale < 2 {
		return fmt.Errorf("service.scale must be at least 2, got %d", c.Service.Scale)
	}
	if c.Service.PollInterval <= 0 {
		return errors.New("service.poll_interval must be positive")
	}
	if c.Service.MaxAttempts <= 0 {
		return errors.New("service.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	width, height := c.TargetPixels()
	if width <= 0 || height <= 0 {
		return errors.New("output dimensions unresolved: set output.width_px/height_px or output.width_cm/height_cm with output.dpi")
	}
	if c.Output.DPI <= 0 {
		return errors.New("output.dpi must be positive")
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
