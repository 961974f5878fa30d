package preflight

import (
	"context"

	"upscale/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir),
		CheckIdentityStore("Identity store", cfg.Paths.IdentityPath),
		CheckService(ctx, cfg.Service.BaseURL),
	}
	return results
}
