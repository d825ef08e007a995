package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"concierge/internal/state"
)

// SearchHit is one ranked match from a memory search
type SearchHit struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search performs a relevance search over an identity's stored turns.
// Ranking is token overlap between the query and the turn content; this is a
// stand-in for the backend's vector index and can be replaced without
// touching callers.
func (r *Repository) Search(ctx context.Context, identity state.Identity, query string, limit int) ([]SearchHit, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	if limit < 1 {
		limit = 5
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []SearchHit{}, nil
	}

	searchQuery := `
		MATCH (g:Guest {tenant_id: $tenantID, user_id: $userID})-[:HAS_TURN]->(t:Turn)
		WITH t, reduce(score = 0.0, tok IN $tokens |
			score + CASE WHEN toLower(t.content) CONTAINS tok THEN 1.0 ELSE 0.0 END) as score
		WHERE score > 0
		RETURN t.content as content, score / size($tokens) as score
		ORDER BY score DESC, t.created_at DESC
		LIMIT $limit
	`

	result, err := session.Run(ctx, searchQuery, map[string]interface{}{
		"tenantID": identity.TenantID,
		"userID":   identity.UserID,
		"tokens":   tokens,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search memory: %w", err)
	}

	hits := []SearchHit{}
	for result.Next(ctx) {
		record := result.Record()
		content := getStringFromRecord(record, "content")
		if content == "" {
			continue
		}
		hits = append(hits, SearchHit{
			Content: content,
			Score:   getFloat64FromRecord(record, "score"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search records: %w", err)
	}

	return hits, nil
}

// tokenize lowercases and splits a query into search tokens, dropping
// one-character noise.
func tokenize(query string) []interface{} {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'")
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
