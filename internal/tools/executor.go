package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"concierge/internal/adapter"
	"concierge/internal/state"
	"concierge/pkg/errors"
	"concierge/pkg/logger"
)

// ExecutionContext carries the identity a tool call acts on behalf of
type ExecutionContext struct {
	Identity state.Identity
}

// CallResult is the immutable outcome of one tool invocation. A failed call
// is a result, not an error: execution is isolated per call so one tool's
// failure never aborts sibling calls from the same model turn.
type CallResult struct {
	Success    bool        `json:"success"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	ToolName   string      `json:"tool_name"`
	ExecutedAt time.Time   `json:"executed_at"`
}

// NotesSearcher reads stored guest notes. Satisfied by the memory client.
type NotesSearcher interface {
	Search(ctx context.Context, identity state.Identity, query string, limit int) []string
}

// HealthStatus reports executor readiness
type HealthStatus struct {
	Status    string    `json:"status"`
	ToolCount int       `json:"tool_count"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}

type handlerFunc func(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error)

// Executor resolves tool calls against a typed registry of handlers. The
// registry is validated against the static catalog at startup, so an
// unregistered catalog tool is a boot failure rather than a runtime miss.
type Executor struct {
	catalog  []Descriptor
	handlers map[string]handlerFunc
	provider *ProviderClient
	guide    *GuideFetcher
	notes    NotesSearcher
	logger   *zap.Logger
}

// NewExecutor creates a tool executor wired to the provider client, the
// area-guide fetcher and the guest-notes reader.
func NewExecutor(provider *ProviderClient, guide *GuideFetcher, notes NotesSearcher) *Executor {
	e := &Executor{
		catalog:  Catalog(),
		provider: provider,
		guide:    guide,
		notes:    notes,
		logger:   logger.Get(),
	}
	e.handlers = map[string]handlerFunc{
		ToolBookSpa:              e.executeBookSpa,
		ToolConfirmDinner:        e.executeConfirmDinner,
		ToolOrderRoomService:     e.executeOrderRoomService,
		ToolRequestHousekeeping:  e.executeRequestHousekeeping,
		ToolLocalRecommendations: e.executeLocalRecommendations,
		ToolLookupGuestNotes:     e.executeLookupGuestNotes,
	}
	return e
}

// Validate checks that every catalog tool has a registered handler
func (e *Executor) Validate() error {
	for _, d := range e.catalog {
		if _, ok := e.handlers[d.Name]; !ok {
			return errors.NewToolCatalogGap(d.Name)
		}
	}
	return nil
}

// Catalog returns the static tool catalog
func (e *Executor) Catalog() []Descriptor {
	return e.catalog
}

// FormatForModel projects the catalog into the LLM function-calling schema
func (e *Executor) FormatForModel() []adapter.Tool {
	return FormatForModel(e.catalog)
}

// Execute runs one tool call. It never raises past this boundary: unknown
// tools and handler failures both come back as a failed CallResult.
func (e *Executor) Execute(ctx context.Context, execCtx *ExecutionContext, toolCall adapter.ToolCall) *CallResult {
	result := &CallResult{
		ToolName:   toolCall.Name,
		ExecutedAt: time.Now().UTC(),
	}

	handler, ok := e.handlers[toolCall.Name]
	if !ok {
		e.logger.Warn("Unknown tool requested",
			zap.String("tool", toolCall.Name),
			zap.String("tenant_id", execCtx.Identity.TenantID),
		)
		result.Error = errors.NewToolNotFound(toolCall.Name).Error()
		return result
	}

	e.logger.Debug("Executing tool",
		zap.String("tool", toolCall.Name),
		zap.String("tenant_id", execCtx.Identity.TenantID),
		zap.String("user_id", execCtx.Identity.UserID),
	)

	args := toolCall.Arguments
	if args == nil {
		args = map[string]interface{}{}
	}

	data, err := e.run(ctx, execCtx, handler, args)
	if err != nil {
		e.logger.Warn("Tool execution failed",
			zap.String("tool", toolCall.Name),
			zap.Error(err),
		)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Result = data
	return result
}

// run invokes a handler, converting panics into errors so a misbehaving tool
// cannot take down the turn
func (e *Executor) run(ctx context.Context, execCtx *ExecutionContext, handler handlerFunc, args map[string]interface{}) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return handler(ctx, execCtx, args)
}

// Health verifies the catalog is non-empty and fully registered
func (e *Executor) Health(ctx context.Context) HealthStatus {
	status := HealthStatus{
		ToolCount: len(e.catalog),
		LastCheck: time.Now().UTC(),
	}
	if len(e.catalog) == 0 {
		status.Status = "unhealthy"
		status.Error = "tool catalog is empty"
		return status
	}
	if err := e.Validate(); err != nil {
		status.Status = "degraded"
		status.Error = err.Error()
		return status
	}
	status.Status = "healthy"
	return status
}

// Handlers

func (e *Executor) executeBookSpa(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error) {
	treatment, _ := args["treatment"].(string)
	if treatment == "" {
		return nil, fmt.Errorf("treatment is required")
	}
	preferredTime, _ := args["time"].(string)

	return e.provider.Post(ctx, "/spa/bookings", map[string]interface{}{
		"tenant_id":   execCtx.Identity.TenantID,
		"user_id":     execCtx.Identity.UserID,
		"property_id": execCtx.Identity.PropertyID,
		"treatment":   treatment,
		"time":        preferredTime,
	})
}

func (e *Executor) executeConfirmDinner(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error) {
	reservationID, _ := args["reservation_id"].(string)

	return e.provider.Post(ctx, "/dining/reservations/confirm", map[string]interface{}{
		"tenant_id":      execCtx.Identity.TenantID,
		"user_id":        execCtx.Identity.UserID,
		"property_id":    execCtx.Identity.PropertyID,
		"reservation_id": reservationID,
	})
}

func (e *Executor) executeOrderRoomService(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error) {
	rawItems, _ := args["items"].([]interface{})
	items := make([]string, 0, len(rawItems))
	for _, it := range rawItems {
		if s, ok := it.(string); ok && s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("items are required")
	}
	notes, _ := args["notes"].(string)

	return e.provider.Post(ctx, "/dining/room-service", map[string]interface{}{
		"tenant_id":   execCtx.Identity.TenantID,
		"user_id":     execCtx.Identity.UserID,
		"property_id": execCtx.Identity.PropertyID,
		"items":       items,
		"notes":       notes,
	})
}

func (e *Executor) executeRequestHousekeeping(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error) {
	request, _ := args["request"].(string)
	if request == "" {
		return nil, fmt.Errorf("request is required")
	}

	return e.provider.Post(ctx, "/ops/housekeeping", map[string]interface{}{
		"tenant_id":   execCtx.Identity.TenantID,
		"user_id":     execCtx.Identity.UserID,
		"property_id": execCtx.Identity.PropertyID,
		"request":     request,
	})
}

func (e *Executor) executeLocalRecommendations(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error) {
	category, _ := args["category"].(string)

	entries, err := e.guide.Fetch(ctx, category)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	}, nil
}

func (e *Executor) executeLookupGuestNotes(ctx context.Context, execCtx *ExecutionContext, args map[string]interface{}) (interface{}, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	notes := e.notes.Search(ctx, execCtx.Identity, query, 5)
	return map[string]interface{}{
		"notes":   notes,
		"count":   len(notes),
		"summary": fmt.Sprintf("Found %d notes matching %q", len(notes), strings.TrimSpace(query)),
	}, nil
}
