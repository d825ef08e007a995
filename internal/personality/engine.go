package personality

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"concierge/pkg/logger"
)

// Adaptation rule constants. Confidence steps are scaled by (1 - complexity)
// so one failure on a hard task moves confidence less than one failure on an
// easy task.
const (
	confidenceStep  = 0.1
	confidenceFloor = 0.2
	traitStep       = 0.02

	defaultName       = "Aria"
	defaultRole       = "guest concierge"
	defaultConfidence = 0.5

	healthLatencyBudget = time.Second
)

// Store persists personality state per (tenant, property)
type Store interface {
	// LoadPersonality returns the stored state, or found=false if none exists
	LoadPersonality(ctx context.Context, tenantID, propertyID string) (*State, bool, error)
	// SavePersonality upserts the state
	SavePersonality(ctx context.Context, tenantID, propertyID string, st *State) error
}

// Engine owns adaptive personality state: one logical instance per
// (tenant, property), loaded each turn and mutated by the update rule.
type Engine struct {
	store  Store
	logger *zap.Logger
}

// NewEngine creates a personality engine backed by the given store
func NewEngine(store Store) *Engine {
	return &Engine{
		store:  store,
		logger: logger.Get(),
	}
}

// DefaultState returns the seed personality used when a tenant has none yet
func DefaultState() *State {
	return &State{
		Name:            defaultName,
		Role:            defaultRole,
		CurrentMood:     moodLadder[neutralMoodIndex],
		ConfidenceLevel: defaultConfidence,
		CoreTraits: []Trait{
			{Name: "warmth", Value: 0.7},
			{Name: "formality", Value: 0.5},
			{Name: "proactivity", Value: 0.6},
			{Name: "patience", Value: 0.7},
		},
	}
}

// Load fetches the personality for a tenant/property, lazily initializing
// and persisting the default if none exists.
func (e *Engine) Load(ctx context.Context, tenantID, propertyID string) (*State, error) {
	st, found, err := e.store.LoadPersonality(ctx, tenantID, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load personality: %w", err)
	}
	if found {
		return st, nil
	}

	st = DefaultState()
	if err := e.store.SavePersonality(ctx, tenantID, propertyID, st); err != nil {
		return nil, fmt.Errorf("failed to initialize personality: %w", err)
	}

	e.logger.Info("Default personality initialized",
		zap.String("tenant_id", tenantID),
		zap.String("property_id", propertyID),
	)
	return st, nil
}

// Update applies the adaptation rule and persists the result. The returned
// state is valid even when persistence fails; callers that must not regress
// a user-facing turn may log the error and continue with it.
func (e *Engine) Update(ctx context.Context, tenantID, propertyID string, st *State, signal Update) (*State, error) {
	next := ApplyUpdate(st, signal)

	if err := e.store.SavePersonality(ctx, tenantID, propertyID, next); err != nil {
		return next, fmt.Errorf("failed to persist personality: %w", err)
	}

	e.logger.Debug("Personality updated",
		zap.String("tenant_id", tenantID),
		zap.Bool("success", signal.Success),
		zap.Float64("complexity", signal.Complexity),
		zap.String("sentiment", signal.Sentiment),
		zap.Float64("confidence", next.ConfidenceLevel),
		zap.String("mood", next.CurrentMood),
	)
	return next, nil
}

// ApplyUpdate is the deterministic adaptation rule. Pure: the input state is
// not modified.
func ApplyUpdate(st *State, signal Update) *State {
	next := &State{
		Name:            st.Name,
		Role:            st.Role,
		CurrentMood:     st.CurrentMood,
		ConfidenceLevel: st.ConfidenceLevel,
		CoreTraits:      make([]Trait, len(st.CoreTraits)),
	}
	copy(next.CoreTraits, st.CoreTraits)

	// Confidence: toward 1.0 on success, toward the floor on failure,
	// more volatile on simple tasks.
	complexity := clamp(signal.Complexity, 0, 1)
	delta := confidenceStep * (1 - complexity)
	if signal.Success {
		next.ConfidenceLevel = clamp(next.ConfidenceLevel+delta, 0, 1)
	} else {
		next.ConfidenceLevel = next.ConfidenceLevel - delta
		if next.ConfidenceLevel < confidenceFloor {
			next.ConfidenceLevel = confidenceFloor
		}
	}

	// Mood: bounded one-step shift along the ladder; neutral sentiment
	// decays toward the neutral midpoint.
	idx := moodIndex(next.CurrentMood)
	switch signal.Sentiment {
	case SentimentPositive:
		if idx < len(moodLadder)-1 {
			idx++
		}
	case SentimentNegative:
		if idx > 0 {
			idx--
		}
	default:
		if idx > neutralMoodIndex {
			idx--
		} else if idx < neutralMoodIndex {
			idx++
		}
	}
	next.CurrentMood = moodLadder[idx]

	// Traits: nudged in the direction implied by sentiment and outcome,
	// never added or removed.
	direction := 0
	if signal.Success {
		direction++
	} else {
		direction--
	}
	switch signal.Sentiment {
	case SentimentPositive:
		direction++
	case SentimentNegative:
		direction--
	}
	if direction != 0 {
		step := traitStep
		if direction < 0 {
			step = -traitStep
		}
		for i := range next.CoreTraits {
			next.CoreTraits[i].Value = clamp(next.CoreTraits[i].Value+step, 0, 1)
		}
	}

	return next
}

// Summarize projects the state into a prompt-ready summary. No side effects.
func (e *Engine) Summarize(st *State) Summary {
	return Summarize(st)
}

// Summarize derives a communication style from mood and traits
func Summarize(st *State) Summary {
	style := "balanced and attentive"
	warmth, _ := st.Trait("warmth")
	formality, _ := st.Trait("formality")

	switch {
	case st.CurrentMood == "upbeat" || (st.CurrentMood == "friendly" && warmth >= 0.7):
		style = "warm and enthusiastic"
	case st.CurrentMood == "subdued":
		style = "measured and careful"
	case formality >= 0.7:
		style = "polished and formal"
	case warmth >= 0.7:
		style = "friendly and personable"
	}

	return Summary{
		Name:               st.Name,
		Role:               st.Role,
		CommunicationStyle: style,
		Mood:               st.CurrentMood,
		Confidence:         st.ConfidenceLevel,
	}
}

// HealthStatus reports whether the engine can round-trip its store
type HealthStatus struct {
	Status        string    `json:"status"`
	PerformanceMs int64     `json:"performance_ms"`
	LastCheck     time.Time `json:"last_check"`
	Error         string    `json:"error,omitempty"`
}

// Health loads and summarizes a probe personality and reports round-trip
// latency. Unhealthy on error, degraded when over the latency budget.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	st, err := e.Load(ctx, "healthcheck", "")
	elapsed := time.Since(start)

	status := HealthStatus{
		PerformanceMs: elapsed.Milliseconds(),
		LastCheck:     time.Now().UTC(),
	}
	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	if err := st.Validate(); err != nil {
		status.Status = "degraded"
		status.Error = err.Error()
		return status
	}
	if elapsed > healthLatencyBudget {
		status.Status = "degraded"
		return status
	}
	status.Status = "healthy"
	return status
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
