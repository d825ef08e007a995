package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"concierge/internal/personality"
)

// LoadPersonality fetches the stored personality for a (tenant, property)
// pair. found is false when none has been initialized yet.
func (r *Repository) LoadPersonality(ctx context.Context, tenantID, propertyID string) (*personality.State, bool, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (p:Personality {tenant_id: $tenantID, property_id: $propertyID})
		RETURN p.name as name, p.role as role, p.mood as mood,
		       p.confidence as confidence,
		       p.trait_names as trait_names, p.trait_values as trait_values
	`

	result, err := session.Run(ctx, query, map[string]interface{}{
		"tenantID":   tenantID,
		"propertyID": propertyID,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to load personality: %w", err)
	}

	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, false, fmt.Errorf("failed to read personality record: %w", err)
		}
		return nil, false, nil
	}

	record := result.Record()
	names := getStringSliceFromRecord(record, "trait_names")
	values := getFloat64SliceFromRecord(record, "trait_values")

	traits := make([]personality.Trait, 0, len(names))
	for i, name := range names {
		value := 0.0
		if i < len(values) {
			value = values[i]
		}
		traits = append(traits, personality.Trait{Name: name, Value: value})
	}

	st := &personality.State{
		Name:            getStringFromRecord(record, "name"),
		Role:            getStringFromRecord(record, "role"),
		CurrentMood:     getStringFromRecord(record, "mood"),
		ConfidenceLevel: getFloat64FromRecord(record, "confidence"),
		CoreTraits:      traits,
	}
	return st, true, nil
}

// SavePersonality upserts the personality row for a (tenant, property) pair.
// Traits are stored as parallel name/value arrays.
func (r *Repository) SavePersonality(ctx context.Context, tenantID, propertyID string, st *personality.State) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	names := make([]string, len(st.CoreTraits))
	values := make([]float64, len(st.CoreTraits))
	for i, t := range st.CoreTraits {
		names[i] = t.Name
		values[i] = t.Value
	}

	query := `
		MERGE (p:Personality {tenant_id: $tenantID, property_id: $propertyID})
		ON CREATE SET p.created_at = datetime()
		SET p.name = $name,
		    p.role = $role,
		    p.mood = $mood,
		    p.confidence = $confidence,
		    p.trait_names = $traitNames,
		    p.trait_values = $traitValues,
		    p.updated_at = datetime()
		RETURN p.tenant_id as tenant_id
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"tenantID":    tenantID,
		"propertyID":  propertyID,
		"name":        st.Name,
		"role":        st.Role,
		"mood":        st.CurrentMood,
		"confidence":  st.ConfidenceLevel,
		"traitNames":  names,
		"traitValues": values,
	})
	if err != nil {
		return fmt.Errorf("failed to save personality: %w", err)
	}

	r.logger.Debug("Personality saved",
		zap.String("tenant_id", tenantID),
		zap.String("property_id", propertyID),
	)
	return nil
}
