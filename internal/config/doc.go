// Package config loads, normalizes, and validates the TOML configuration for
// the upscale pipeline.
//
// Load resolves the config path (explicit flag, then the user config dir,
// then a project-local upscale.toml), decodes over repository defaults,
// expands ~ paths, and validates the result. The embedded sample file backs
// the config init command.
package config
