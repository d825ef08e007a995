package agent

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"concierge/internal/memory"
	"concierge/internal/personality"
	"concierge/internal/tools"
)

// HealthComponents is the per-component breakdown of the aggregate health
type HealthComponents struct {
	Memory        memory.HealthStatus      `json:"memory"`
	Personality   personality.HealthStatus `json:"personality"`
	Tools         tools.HealthStatus       `json:"tools"`
	LLMConfigured bool                     `json:"llm_configured"`
}

// Health is the orchestrator's aggregated health record
type Health struct {
	Status     string           `json:"status"`
	Components HealthComponents `json:"components"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Health checks all components concurrently and aggregates their status.
// healthy only when every component is healthy and LLM credentials are
// configured.
func (o *Orchestrator) Health(ctx context.Context) Health {
	var components HealthComponents

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		components.Memory = o.memoryStore.Health(gctx)
		return nil
	})
	g.Go(func() error {
		components.Personality = o.engine.Health(gctx)
		return nil
	})
	g.Go(func() error {
		components.Tools = o.executor.Health(gctx)
		return nil
	})
	_ = g.Wait()

	components.LLMConfigured = o.llm.Configured()

	status := "healthy"
	if components.Memory.Status != "healthy" ||
		components.Personality.Status != "healthy" ||
		components.Tools.Status != "healthy" ||
		!components.LLMConfigured {
		status = "unhealthy"
	}

	return Health{
		Status:     status,
		Components: components,
		Timestamp:  time.Now().UTC(),
	}
}
