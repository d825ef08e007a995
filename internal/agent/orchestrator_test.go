package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"concierge/internal/adapter"
	"concierge/internal/memory"
	"concierge/internal/personality"
	"concierge/internal/state"
	"concierge/internal/tools"
)

// Mocks

type mockMemory struct {
	mu        sync.Mutex
	turns     []state.Turn
	memories  []string
	addErr    error
	searchHit bool
}

func (m *mockMemory) AddTurns(ctx context.Context, identity state.Identity, turns []state.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.turns = append(m.turns, turns...)
	return nil
}

func (m *mockMemory) Search(ctx context.Context, identity state.Identity, query string, limit int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchHit = true
	if len(m.memories) > limit {
		return m.memories[:limit]
	}
	if m.memories == nil {
		return []string{}
	}
	return m.memories
}

func (m *mockMemory) Health(ctx context.Context) memory.HealthStatus {
	return memory.HealthStatus{Status: "healthy"}
}

func (m *mockMemory) storedTurns() []state.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]state.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

type mockEngine struct {
	mu      sync.Mutex
	state   *personality.State
	loadErr error
	updates []personality.Update
}

func newMockEngine() *mockEngine {
	return &mockEngine{state: personality.DefaultState()}
}

func (m *mockEngine) Load(ctx context.Context, tenantID, propertyID string) (*personality.State, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.state, nil
}

func (m *mockEngine) Update(ctx context.Context, tenantID, propertyID string, st *personality.State, signal personality.Update) (*personality.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, signal)
	m.state = personality.ApplyUpdate(st, signal)
	return m.state, nil
}

func (m *mockEngine) Summarize(st *personality.State) personality.Summary {
	return personality.Summarize(st)
}

func (m *mockEngine) Health(ctx context.Context) personality.HealthStatus {
	return personality.HealthStatus{Status: "healthy"}
}

type mockExecutor struct {
	failTools map[string]bool
	executed  []string
}

func (m *mockExecutor) Catalog() []tools.Descriptor {
	return tools.Catalog()
}

func (m *mockExecutor) FormatForModel() []adapter.Tool {
	return tools.FormatForModel(tools.Catalog())
}

func (m *mockExecutor) Execute(ctx context.Context, execCtx *tools.ExecutionContext, toolCall adapter.ToolCall) *tools.CallResult {
	m.executed = append(m.executed, toolCall.Name)
	if m.failTools[toolCall.Name] {
		return &tools.CallResult{ToolName: toolCall.Name, Error: "provider unavailable"}
	}
	return &tools.CallResult{ToolName: toolCall.Name, Success: true, Result: "ok"}
}

func (m *mockExecutor) Health(ctx context.Context) tools.HealthStatus {
	return tools.HealthStatus{Status: "healthy", ToolCount: len(tools.Catalog())}
}

type mockLLM struct {
	mu         sync.Mutex
	response   *adapter.Response
	err        error
	configured bool
	gotPrompt  string
}

func (m *mockLLM) Generate(ctx context.Context, systemPrompt, userMsg string, availableTools []adapter.Tool) (*adapter.Response, error) {
	m.mu.Lock()
	m.gotPrompt = systemPrompt
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *mockLLM) Configured() bool {
	return m.configured
}

func guestIdentity() state.Identity {
	return state.Identity{TenantID: "tenant-1", UserID: "guest-1", PropertyID: "prop-9"}
}

func newTestOrchestrator(mem *mockMemory, engine *mockEngine, exec *mockExecutor, llm *mockLLM) *Orchestrator {
	return NewOrchestrator(mem, engine, exec, llm)
}

// Tests

func TestChat_ContentOnlyTurn(t *testing.T) {
	mem := &mockMemory{memories: []string{"prefers sparkling water"}}
	engine := newMockEngine()
	exec := &mockExecutor{}
	llm := &mockLLM{
		configured: true,
		response:   &adapter.Response{Content: "Of course, I'll note that down."},
	}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	result := orch.Chat(context.Background(), guestIdentity(), "Please remember I like sparkling water.")

	if result.Response != "Of course, I'll note that down." {
		t.Errorf("Unexpected response: %q", result.Response)
	}
	if len(result.ToolsUsed) != 0 {
		t.Errorf("Expected no tool calls, got %d", len(result.ToolsUsed))
	}
	if len(result.Memories) != 1 {
		t.Errorf("Expected recalled memories in the result, got %v", result.Memories)
	}

	// The turn pair must be persisted in order: user first, assistant second
	stored := mem.storedTurns()
	if len(stored) != 2 {
		t.Fatalf("Expected the turn pair persisted, got %d turns", len(stored))
	}
	if stored[0].Role != state.RoleUser || stored[1].Role != state.RoleAssistant {
		t.Errorf("Turn pair out of order: %s, %s", stored[0].Role, stored[1].Role)
	}

	// Prompt carries persona and recalled memories
	if llm.gotPrompt == "" {
		t.Fatal("Expected a system prompt")
	}
}

func TestChat_LLMFailureYieldsFallback(t *testing.T) {
	mem := &mockMemory{}
	engine := newMockEngine()
	exec := &mockExecutor{}
	llm := &mockLLM{err: errors.New("gateway timeout")}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	result := orch.Chat(context.Background(), guestIdentity(), "Book me a table.")

	if result.Response != FallbackResponse {
		t.Errorf("Expected fallback response, got %q", result.Response)
	}
	if result.ToolsUsed == nil || len(result.ToolsUsed) != 0 {
		t.Errorf("Fallback must carry an empty tool list, got %v", result.ToolsUsed)
	}
	if result.Memories == nil || len(result.Memories) != 0 {
		t.Errorf("Fallback must carry an empty memory list, got %v", result.Memories)
	}
	if len(mem.storedTurns()) != 0 {
		t.Error("Failed turns must not be persisted")
	}
	if len(engine.updates) != 0 {
		t.Error("Failed turns must not adapt personality")
	}
}

func TestChat_PersonalityLoadFailureYieldsFallback(t *testing.T) {
	mem := &mockMemory{}
	engine := newMockEngine()
	engine.loadErr = errors.New("graph down")
	exec := &mockExecutor{}
	llm := &mockLLM{response: &adapter.Response{Content: "hi"}}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	result := orch.Chat(context.Background(), guestIdentity(), "Hello")
	if result.Response != FallbackResponse {
		t.Errorf("Expected fallback, got %q", result.Response)
	}
}

func TestChat_InvalidIdentityYieldsFallback(t *testing.T) {
	orch := newTestOrchestrator(&mockMemory{}, newMockEngine(), &mockExecutor{}, &mockLLM{
		response: &adapter.Response{Content: "hi"},
	})

	result := orch.Chat(context.Background(), state.Identity{TenantID: "", UserID: "guest-1"}, "Hello")
	if result.Response != FallbackResponse {
		t.Errorf("Expected fallback for missing tenant, got %q", result.Response)
	}
}

func TestChat_EmptyMessageYieldsFallback(t *testing.T) {
	orch := newTestOrchestrator(&mockMemory{}, newMockEngine(), &mockExecutor{}, &mockLLM{
		response: &adapter.Response{Content: "hi"},
	})

	result := orch.Chat(context.Background(), guestIdentity(), "")
	if result.Response != FallbackResponse {
		t.Errorf("Expected fallback for empty message, got %q", result.Response)
	}
}

func TestChat_ToolFailureIsIsolated(t *testing.T) {
	mem := &mockMemory{}
	engine := newMockEngine()
	startConfidence := engine.state.ConfidenceLevel
	exec := &mockExecutor{failTools: map[string]bool{tools.ToolConfirmDinner: true}}
	llm := &mockLLM{
		configured: true,
		response: &adapter.Response{
			Content: "I've booked your spa session; the dinner confirmation didn't go through.",
			ToolCalls: []adapter.ToolCall{
				{Name: tools.ToolBookSpa, Arguments: map[string]interface{}{"treatment": "massage"}},
				{Name: tools.ToolConfirmDinner, Arguments: map[string]interface{}{"reservation_id": "r-1"}},
			},
		},
	}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	result := orch.Chat(context.Background(), guestIdentity(), "Book the spa and also confirm my dinner reservation, please.")

	// Both calls execute in order; the failure is recorded, not fatal
	if len(result.ToolsUsed) != 2 {
		t.Fatalf("Expected 2 tool results, got %d", len(result.ToolsUsed))
	}
	if !result.ToolsUsed[0].Success {
		t.Error("First tool should have succeeded")
	}
	if result.ToolsUsed[1].Success {
		t.Error("Second tool should have failed")
	}
	if exec.executed[0] != tools.ToolBookSpa || exec.executed[1] != tools.ToolConfirmDinner {
		t.Errorf("Tools must run in model order, got %v", exec.executed)
	}

	// The model's reply survives the partial failure
	if result.Response == FallbackResponse || result.Response == "" {
		t.Errorf("Partial tool failure must not degrade the reply, got %q", result.Response)
	}

	// The turn still persists and still counts as a success for adaptation
	if len(mem.storedTurns()) != 2 {
		t.Error("Expected the turn pair persisted despite the tool failure")
	}
	if len(engine.updates) != 1 {
		t.Fatalf("Expected one personality update, got %d", len(engine.updates))
	}
	if !engine.updates[0].Success {
		t.Error("Orchestration completed, so the update signal must be a success")
	}
	if engine.state.ConfidenceLevel <= startConfidence {
		t.Errorf("Expected confidence to move up, got %f -> %f", startConfidence, engine.state.ConfidenceLevel)
	}
}

func TestChat_EmptyContentSummarizesToolOutcome(t *testing.T) {
	mem := &mockMemory{}
	engine := newMockEngine()
	exec := &mockExecutor{}
	llm := &mockLLM{
		response: &adapter.Response{
			ToolCalls: []adapter.ToolCall{
				{Name: tools.ToolBookSpa, Arguments: map[string]interface{}{"treatment": "facial"}},
			},
		},
	}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	result := orch.Chat(context.Background(), guestIdentity(), "Book me a facial.")
	if result.Response == "" || result.Response == FallbackResponse {
		t.Errorf("Expected a synthesized outcome summary, got %q", result.Response)
	}
}

func TestChat_CancelledContextSkipsPersistence(t *testing.T) {
	mem := &mockMemory{}
	engine := newMockEngine()
	exec := &mockExecutor{}
	llm := &mockLLM{response: &adapter.Response{Content: "All set."}}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := orch.Chat(ctx, guestIdentity(), "Book the spa for me tomorrow.")

	// The already-generated reply is still returned, but neither state
	// mutation commits.
	if result.Response != "All set." && result.Response != FallbackResponse {
		t.Errorf("Unexpected response: %q", result.Response)
	}
	if len(mem.storedTurns()) != 0 {
		t.Error("Cancelled turn must not persist memory")
	}
	if len(engine.updates) != 0 {
		t.Error("Cancelled turn must not adapt personality")
	}
}

func TestChat_MemoryWriteFailureDoesNotDegradeReply(t *testing.T) {
	mem := &mockMemory{addErr: errors.New("graph write failed")}
	engine := newMockEngine()
	exec := &mockExecutor{}
	llm := &mockLLM{response: &adapter.Response{Content: "Certainly."}}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	result := orch.Chat(context.Background(), guestIdentity(), "Hello there.")
	if result.Response != "Certainly." {
		t.Errorf("Write failure must not replace the reply, got %q", result.Response)
	}
	if len(engine.updates) != 1 {
		t.Error("Personality adaptation should still run after a write failure")
	}
}

func TestChat_SerializesTurnsPerIdentity(t *testing.T) {
	mem := &mockMemory{}
	engine := newMockEngine()
	exec := &mockExecutor{}
	llm := &mockLLM{response: &adapter.Response{Content: "Reply."}}
	orch := newTestOrchestrator(mem, engine, exec, llm)

	identity := guestIdentity()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			orch.Chat(context.Background(), identity, fmt.Sprintf("message %d", n))
		}(i)
	}
	wg.Wait()

	stored := mem.storedTurns()
	if len(stored) != 16 {
		t.Fatalf("Expected 16 persisted turns, got %d", len(stored))
	}
	// Serialization means pairs are never interleaved
	for i := 0; i < len(stored); i += 2 {
		if stored[i].Role != state.RoleUser || stored[i+1].Role != state.RoleAssistant {
			t.Fatalf("Turn pair interleaved at index %d", i)
		}
	}
}

func TestSummarizeToolOutcome(t *testing.T) {
	ok := tools.CallResult{Success: true}
	bad := tools.CallResult{Success: false}

	if got := summarizeToolOutcome(nil); got != FallbackResponse {
		t.Errorf("No results should fall back, got %q", got)
	}
	if got := summarizeToolOutcome([]tools.CallResult{ok, ok}); got == FallbackResponse {
		t.Error("All-success summary should not be the fallback")
	}
	allFailed := summarizeToolOutcome([]tools.CallResult{bad, bad})
	partial := summarizeToolOutcome([]tools.CallResult{ok, bad})
	if allFailed == partial {
		t.Error("All-failed and partial summaries should differ")
	}
}

func TestHealth_Aggregation(t *testing.T) {
	orch := newTestOrchestrator(&mockMemory{}, newMockEngine(), &mockExecutor{}, &mockLLM{configured: true})

	health := orch.Health(context.Background())
	if health.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", health.Status)
	}
	if !health.Components.LLMConfigured {
		t.Error("Expected llm_configured true")
	}
	if health.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}

	// Missing LLM credentials alone make the aggregate unhealthy
	orch = newTestOrchestrator(&mockMemory{}, newMockEngine(), &mockExecutor{}, &mockLLM{configured: false})
	health = orch.Health(context.Background())
	if health.Status != "unhealthy" {
		t.Errorf("Expected unhealthy without LLM credentials, got %s", health.Status)
	}
}
