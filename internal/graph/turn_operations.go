package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"concierge/internal/state"
)

// AddTurns appends one or more conversation turns for an identity.
// Turns are stored in the order given; ordering within a batch is preserved
// by a per-turn sequence offset on the timestamp index.
func (r *Repository) AddTurns(ctx context.Context, identity state.Identity, turns []state.Turn) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (g:Guest {tenant_id: $tenantID, user_id: $userID})
		ON CREATE SET g.created_at = datetime()
		CREATE (t:Turn {
			id: $turnID,
			role: $role,
			content: $content,
			property_id: $propertyID,
			seq: $seq,
			created_at: datetime($createdAt)
		})
		CREATE (g)-[:HAS_TURN]->(t)
		RETURN t.id as id
	`

	for i, turn := range turns {
		ts := turn.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		_, err := session.Run(ctx, query, map[string]interface{}{
			"tenantID":   identity.TenantID,
			"userID":     identity.UserID,
			"propertyID": identity.PropertyID,
			"turnID":     uuid.New().String(),
			"role":       turn.Role,
			"content":    turn.Content,
			"seq":        i,
			"createdAt":  ts.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return fmt.Errorf("failed to store turn: %w", err)
		}
	}

	r.logger.Debug("Turns stored",
		zap.String("tenant_id", identity.TenantID),
		zap.String("user_id", identity.UserID),
		zap.Int("count", len(turns)),
	)
	return nil
}

// History returns the full conversation history for an identity in
// chronological order.
func (r *Repository) History(ctx context.Context, identity state.Identity) ([]state.Turn, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (g:Guest {tenant_id: $tenantID, user_id: $userID})-[:HAS_TURN]->(t:Turn)
		RETURN t.role as role, t.content as content, t.created_at as created_at
		ORDER BY t.created_at ASC, t.seq ASC
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"tenantID": identity.TenantID,
		"userID":   identity.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	turns := []state.Turn{}
	for result.Next(ctx) {
		record := result.Record()
		turns = append(turns, state.Turn{
			Role:      getStringFromRecord(record, "role"),
			Content:   getStringFromRecord(record, "content"),
			Timestamp: getTimeFromRecord(record, "created_at"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history records: %w", err)
	}

	return turns, nil
}

// Clear irreversibly deletes all turns for an identity
func (r *Repository) Clear(ctx context.Context, identity state.Identity) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (g:Guest {tenant_id: $tenantID, user_id: $userID})-[:HAS_TURN]->(t:Turn)
		DETACH DELETE t
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"tenantID": identity.TenantID,
		"userID":   identity.UserID,
	})
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	r.logger.Info("Conversation history cleared",
		zap.String("tenant_id", identity.TenantID),
		zap.String("user_id", identity.UserID),
	)
	return nil
}

// CountTurns returns the number of stored turns for an identity and the
// timestamp of the most recent one.
func (r *Repository) CountTurns(ctx context.Context, identity state.Identity) (int, time.Time, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (g:Guest {tenant_id: $tenantID, user_id: $userID})-[:HAS_TURN]->(t:Turn)
		RETURN count(t) as total, max(t.created_at) as last_updated
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"tenantID": identity.TenantID,
		"userID":   identity.UserID,
	})
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count turns: %w", err)
	}

	record, err := result.Single(ctx)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read count record: %w", err)
	}

	total := int(getInt64FromRecord(record, "total"))
	lastUpdated := getTimeFromRecord(record, "last_updated")
	return total, lastUpdated, nil
}

// UpdateRecord replaces the content of a single stored turn by its ID
func (r *Repository) UpdateRecord(ctx context.Context, memoryID, newContent string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (t:Turn {id: $memoryID})
		SET t.content = $newContent, t.updated_at = datetime()
		RETURN t.id as id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"memoryID":   memoryID,
		"newContent": newContent,
	})
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return ErrRecordNotFound{ID: memoryID}
	}

	r.logger.Info("Memory record updated", zap.String("memory_id", memoryID))
	return nil
}

// DeleteRecord removes a single stored turn by its ID
func (r *Repository) DeleteRecord(ctx context.Context, memoryID string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (t:Turn {id: $memoryID})
		WITH t, t.id as id
		DETACH DELETE t
		RETURN id
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"memoryID": memoryID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return ErrRecordNotFound{ID: memoryID}
	}

	r.logger.Info("Memory record deleted", zap.String("memory_id", memoryID))
	return nil
}
