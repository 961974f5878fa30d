package workflow

import (
	"context"

	"upscale/internal/stage"
)

// Health reports the readiness of every configured stage in pipeline order.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			results = append(results, stage.Unhealthy(stg.name, "handler unavailable"))
			continue
		}
		results = append(results, stg.handler.HealthCheck(ctx))
	}
	return results
}

// Ready returns true when every stage reports healthy.
func (m *Manager) Ready(ctx context.Context) bool {
	for _, health := range m.Health(ctx) {
		if !health.Ready {
			return false
		}
	}
	return true
}
