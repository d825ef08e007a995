package memory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"concierge/internal/graph"
	"concierge/internal/state"
	"concierge/pkg/errors"
	"concierge/pkg/logger"
)

const defaultSearchLimit = 5

// Stats is a derived, recomputed-on-demand snapshot of an identity's stored
// memory. Never persisted.
type Stats struct {
	TotalMemories     int       `json:"total_memories"`
	TenantID          string    `json:"tenant_id"`
	UserID            string    `json:"user_id"`
	LastUpdated       time.Time `json:"last_updated"`
	AverageSimilarity float64   `json:"average_similarity,omitempty"`
	SearchEfficiency  float64   `json:"search_efficiency,omitempty"`
}

// HealthStatus reports memory backend reachability and round-trip latency
type HealthStatus struct {
	Status        string    `json:"status"`
	Connection    string    `json:"connection"`
	PerformanceMs int64     `json:"performance_ms"`
	LastCheck     time.Time `json:"last_check"`
	Error         string    `json:"error,omitempty"`
}

// Backend is the persistence contract the client wraps. The graph repository
// implements it; the technology behind it is interchangeable.
type Backend interface {
	AddTurns(ctx context.Context, identity state.Identity, turns []state.Turn) error
	History(ctx context.Context, identity state.Identity) ([]state.Turn, error)
	Search(ctx context.Context, identity state.Identity, query string, limit int) ([]graph.SearchHit, error)
	Clear(ctx context.Context, identity state.Identity) error
	UpdateRecord(ctx context.Context, memoryID, newContent string) error
	DeleteRecord(ctx context.Context, memoryID string) error
	CountTurns(ctx context.Context, identity state.Identity) (int, time.Time, error)
}

// Client is the Memory Store Client. Failure policy is asymmetric by
// contract: reads (Search, GetHistory, Stats) are best-effort context
// enrichment and never fail the caller; writes (AddTurns, Update, Delete,
// Clear) propagate, because their silent failure would misreport durability.
type Client struct {
	backend Backend
	logger  *zap.Logger
}

// NewClient creates a memory store client over the given backend
func NewClient(backend Backend) *Client {
	return &Client{
		backend: backend,
		logger:  logger.Get(),
	}
}

// AddTurns stores one or more turns for an identity. Propagates failure.
func (c *Client) AddTurns(ctx context.Context, identity state.Identity, turns []state.Turn) error {
	if err := identity.Validate(); err != nil {
		return errors.NewMemoryWrite("add", err)
	}
	for _, t := range turns {
		if err := t.Validate(); err != nil {
			return errors.NewMemoryWrite("add", err)
		}
	}
	if err := c.backend.AddTurns(ctx, identity, turns); err != nil {
		return errors.NewMemoryWrite("add", err)
	}
	return nil
}

// Search returns at most limit memory snippets ranked by relevance. Never
// fails: a backend error yields an empty list, since memory search augments
// chat but must never block it.
func (c *Client) Search(ctx context.Context, identity state.Identity, query string, limit int) []string {
	if limit < 1 {
		limit = defaultSearchLimit
	}
	hits, err := c.backend.Search(ctx, identity, query, limit)
	if err != nil {
		c.logger.Warn("Memory search failed, returning empty results",
			zap.String("tenant_id", identity.TenantID),
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		return []string{}
	}

	results := make([]string, 0, len(hits))
	for _, h := range hits {
		results = append(results, h.Content)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// GetHistory returns the full chronological history. Never fails; a backend
// error yields an empty list.
func (c *Client) GetHistory(ctx context.Context, identity state.Identity) []state.Turn {
	turns, err := c.backend.History(ctx, identity)
	if err != nil {
		c.logger.Warn("History fetch failed, returning empty history",
			zap.String("tenant_id", identity.TenantID),
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		return []state.Turn{}
	}
	return turns
}

// Clear irreversibly deletes all turns for an identity. Propagates failure
// so callers know whether the wipe succeeded.
func (c *Client) Clear(ctx context.Context, identity state.Identity) error {
	if err := identity.Validate(); err != nil {
		return errors.NewMemoryWrite("clear", err)
	}
	if err := c.backend.Clear(ctx, identity); err != nil {
		return errors.NewMemoryWrite("clear", err)
	}
	return nil
}

// Update replaces the content of a single memory record. Propagates failure.
func (c *Client) Update(ctx context.Context, memoryID, newContent string) error {
	if err := c.backend.UpdateRecord(ctx, memoryID, newContent); err != nil {
		return errors.NewMemoryWrite("update", err)
	}
	return nil
}

// Delete removes a single memory record. Propagates failure.
func (c *Client) Delete(ctx context.Context, memoryID string) error {
	if err := c.backend.DeleteRecord(ctx, memoryID); err != nil {
		return errors.NewMemoryWrite("delete", err)
	}
	return nil
}

// Stats recomputes the memory snapshot for an identity. Best-effort: on
// failure it returns a zeroed record stamped with the current time so
// dashboards never hard-fail.
func (c *Client) Stats(ctx context.Context, identity state.Identity) Stats {
	stats := Stats{
		TenantID: identity.TenantID,
		UserID:   identity.UserID,
	}

	total, lastUpdated, err := c.backend.CountTurns(ctx, identity)
	if err != nil {
		c.logger.Warn("Stats computation failed, returning zeroed snapshot",
			zap.String("tenant_id", identity.TenantID),
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		stats.LastUpdated = time.Now().UTC()
		return stats
	}

	stats.TotalMemories = total
	stats.LastUpdated = lastUpdated
	if stats.LastUpdated.IsZero() {
		stats.LastUpdated = time.Now().UTC()
	}
	return stats
}

// Health measures round-trip latency of a lightweight stats call. healthy if
// reachable, unhealthy on error, degraded when reachable but returning
// invalid data.
func (c *Client) Health(ctx context.Context) HealthStatus {
	probe := state.Identity{TenantID: "healthcheck", UserID: "healthcheck"}

	start := time.Now()
	total, _, err := c.backend.CountTurns(ctx, probe)
	elapsed := time.Since(start)

	status := HealthStatus{
		PerformanceMs: elapsed.Milliseconds(),
		LastCheck:     time.Now().UTC(),
	}
	if err != nil {
		status.Status = "unhealthy"
		status.Connection = "failed"
		status.Error = err.Error()
		return status
	}
	status.Connection = "ok"
	if total < 0 {
		status.Status = "degraded"
		status.Error = "backend returned negative count"
		return status
	}
	status.Status = "healthy"
	return status
}
