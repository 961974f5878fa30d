package stage

import (
	"context"

	"upscale/internal/runs"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *runs.Item) error
	Execute(context.Context, *runs.Item) error
	HealthCheck(context.Context) Health
}
