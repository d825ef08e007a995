package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"concierge/pkg/logger"
)

// Repository handles all Neo4j database operations: conversation turns,
// memory search and the persisted personality rows.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// Ping runs a trivial read to verify the backend is reachable
func (r *Repository) Ping(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, "RETURN 1 as ok", nil)
	if err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}

// Helper functions

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}

func getInt64FromRecord(record *neo4j.Record, key string) int64 {
	val, ok := record.Get(key)
	if !ok {
		return 0
	}
	if n, ok := val.(int64); ok {
		return n
	}
	return 0
}

func getFloat64FromRecord(record *neo4j.Record, key string) float64 {
	val, ok := record.Get(key)
	if !ok {
		return 0
	}
	switch n := val.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func getTimeFromRecord(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok {
		return time.Time{}
	}
	// Neo4j datetime values come back as time.Time
	if t, ok := val.(time.Time); ok {
		return t
	}
	if s, ok := val.(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getStringSliceFromRecord(record *neo4j.Record, key string) []string {
	val, ok := record.Get(key)
	if !ok {
		return []string{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]string, 0, len(slice))
		for _, v := range slice {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	}
	return []string{}
}

func getFloat64SliceFromRecord(record *neo4j.Record, key string) []float64 {
	val, ok := record.Get(key)
	if !ok {
		return []float64{}
	}
	if slice, ok := val.([]interface{}); ok {
		result := make([]float64, 0, len(slice))
		for _, v := range slice {
			switch n := v.(type) {
			case float64:
				result = append(result, n)
			case int64:
				result = append(result, float64(n))
			}
		}
		return result
	}
	return []float64{}
}

// Errors

type ErrRecordNotFound struct {
	ID string
}

func (e ErrRecordNotFound) Error() string {
	return fmt.Sprintf("memory record not found: %s", e.ID)
}
