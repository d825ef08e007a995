package agent

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"concierge/internal/adapter"
	"concierge/internal/memory"
	"concierge/internal/personality"
	"concierge/internal/state"
	"concierge/internal/tools"
	"concierge/pkg/logger"
)

// FallbackResponse is the fixed reply returned whenever a turn cannot
// complete. The caller always gets some reply; content degrades, never
// availability.
const FallbackResponse = "I'm sorry, I'm having trouble helping with that right now. Please try again in a moment."

const memorySearchLimit = 3

// MemoryStore is the slice of the memory client the orchestrator needs
type MemoryStore interface {
	AddTurns(ctx context.Context, identity state.Identity, turns []state.Turn) error
	Search(ctx context.Context, identity state.Identity, query string, limit int) []string
	Health(ctx context.Context) memory.HealthStatus
}

// PersonalityEngine is the slice of the personality engine the orchestrator
// needs
type PersonalityEngine interface {
	Load(ctx context.Context, tenantID, propertyID string) (*personality.State, error)
	Update(ctx context.Context, tenantID, propertyID string, st *personality.State, signal personality.Update) (*personality.State, error)
	Summarize(st *personality.State) personality.Summary
	Health(ctx context.Context) personality.HealthStatus
}

// ToolExecutor is the slice of the tool executor the orchestrator needs
type ToolExecutor interface {
	Catalog() []tools.Descriptor
	FormatForModel() []adapter.Tool
	Execute(ctx context.Context, execCtx *tools.ExecutionContext, toolCall adapter.ToolCall) *tools.CallResult
	Health(ctx context.Context) tools.HealthStatus
}

// LLM is the generation backend
type LLM interface {
	Generate(ctx context.Context, systemPrompt, userMsg string, tools []adapter.Tool) (*adapter.Response, error)
	Configured() bool
}

// ChatResult is the aggregate outcome of one turn
type ChatResult struct {
	Response    string              `json:"response"`
	ToolsUsed   []tools.CallResult  `json:"tools_used"`
	Memories    []string            `json:"memories"`
	Personality personality.Summary `json:"personality"`
}

// Orchestrator drives the per-turn pipeline: load context, build prompt,
// generate, execute tools, persist, adapt personality. Its outermost
// contract is to never raise: every failure degrades to FallbackResponse.
type Orchestrator struct {
	memoryStore MemoryStore
	engine      PersonalityEngine
	executor    ToolExecutor
	llm         LLM
	scorer      personality.Scorer
	logger      *zap.Logger

	// Turns for the same identity are serialized; different identities run
	// fully concurrently.
	locks sync.Map // identity key -> *sync.Mutex
}

// NewOrchestrator creates an agent orchestrator with injected dependencies
func NewOrchestrator(memoryStore MemoryStore, engine PersonalityEngine, executor ToolExecutor, llm LLM) *Orchestrator {
	return &Orchestrator{
		memoryStore: memoryStore,
		engine:      engine,
		executor:    executor,
		llm:         llm,
		scorer:      personality.NewHeuristicScorer(),
		logger:      logger.Get(),
	}
}

// SetScorer replaces the heuristic scorer, e.g. with a model-backed one
func (o *Orchestrator) SetScorer(scorer personality.Scorer) {
	if scorer != nil {
		o.scorer = scorer
	}
}

func (o *Orchestrator) lockFor(key string) *sync.Mutex {
	mu, _ := o.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func fallbackResult() *ChatResult {
	return &ChatResult{
		Response:  FallbackResponse,
		ToolsUsed: []tools.CallResult{},
		Memories:  []string{},
	}
}

// Chat runs one conversation turn for an identity. It always returns a
// well-formed result and never an error.
func (o *Orchestrator) Chat(ctx context.Context, identity state.Identity, message string) *ChatResult {
	if err := identity.Validate(); err != nil {
		o.logger.Warn("Chat rejected: invalid identity", zap.Error(err))
		return fallbackResult()
	}
	if message == "" {
		return fallbackResult()
	}

	mu := o.lockFor(identity.Key())
	mu.Lock()
	defer mu.Unlock()

	result, err := o.runTurn(ctx, identity, message)
	if err != nil {
		o.logger.Error("Turn failed, returning fallback",
			zap.String("tenant_id", identity.TenantID),
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
		return fallbackResult()
	}
	return result
}

// runTurn executes the staged pipeline. Any error returned here is converted
// to the fallback by Chat.
func (o *Orchestrator) runTurn(ctx context.Context, identity state.Identity, message string) (*ChatResult, error) {
	o.logger.Debug("Starting turn",
		zap.String("tenant_id", identity.TenantID),
		zap.String("user_id", identity.UserID),
	)

	// 1. Load context
	persona, err := o.engine.Load(ctx, identity.TenantID, identity.PropertyID)
	if err != nil {
		return nil, err
	}
	memories := o.memoryStore.Search(ctx, identity, message, memorySearchLimit)

	// 2. Build prompt
	summary := o.engine.Summarize(persona)
	systemPrompt := buildSystemPrompt(summary, o.executor.Catalog(), memories)

	// 3. Generate
	llmResponse, err := o.llm.Generate(ctx, systemPrompt, message, o.executor.FormatForModel())
	if err != nil {
		return nil, err
	}

	// 4. Execute tools in the order the model returned them; one failure is
	// recorded, not fatal.
	execCtx := &tools.ExecutionContext{Identity: identity}
	toolsUsed := make([]tools.CallResult, 0, len(llmResponse.ToolCalls))
	for _, toolCall := range llmResponse.ToolCalls {
		callResult := o.executor.Execute(ctx, execCtx, toolCall)
		toolsUsed = append(toolsUsed, *callResult)
	}

	response := llmResponse.Content
	if response == "" {
		response = summarizeToolOutcome(toolsUsed)
	}

	// 5 + 6. Persist the turn pair and adapt personality. If the caller
	// already disconnected, commit neither; otherwise run both detached so a
	// mid-flight cancellation cannot split them.
	if ctx.Err() != nil {
		o.logger.Warn("Turn cancelled before persistence, skipping state mutations",
			zap.String("tenant_id", identity.TenantID),
			zap.String("user_id", identity.UserID),
		)
		return &ChatResult{
			Response:    response,
			ToolsUsed:   toolsUsed,
			Memories:    memories,
			Personality: summary,
		}, nil
	}
	detached := context.WithoutCancel(ctx)

	turns := []state.Turn{
		{Role: state.RoleUser, Content: message},
		{Role: state.RoleAssistant, Content: response},
	}
	if err := o.memoryStore.AddTurns(detached, identity, turns); err != nil {
		// The user still gets the generated reply even when persistence
		// fails; the write error stays an operational signal.
		o.logger.Warn("Failed to persist turn",
			zap.String("tenant_id", identity.TenantID),
			zap.String("user_id", identity.UserID),
			zap.Error(err),
		)
	}

	// Turn-level success reflects the orchestration completing, not
	// per-tool outcomes.
	signal := personality.Update{
		Success:    true,
		Complexity: o.scorer.Complexity(message),
		Sentiment:  o.scorer.Sentiment(message),
	}
	updated, err := o.engine.Update(detached, identity.TenantID, identity.PropertyID, persona, signal)
	if err != nil {
		o.logger.Warn("Failed to persist personality update",
			zap.String("tenant_id", identity.TenantID),
			zap.Error(err),
		)
	}
	if updated != nil {
		summary = o.engine.Summarize(updated)
	}

	// 7. Return the aggregate result
	return &ChatResult{
		Response:    response,
		ToolsUsed:   toolsUsed,
		Memories:    memories,
		Personality: summary,
	}, nil
}

// summarizeToolOutcome is used when the model requested tools but returned
// no prose
func summarizeToolOutcome(results []tools.CallResult) string {
	if len(results) == 0 {
		return FallbackResponse
	}
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed == 0 {
		return "Done. I've taken care of that for you."
	}
	if failed == len(results) {
		return "I tried to arrange that, but the request didn't go through. Please try again shortly."
	}
	return "I've taken care of part of that; one of the requests didn't go through, so please check back shortly."
}
