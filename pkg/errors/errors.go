package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeMemory represents memory store errors
	ErrorTypeMemory ErrorType = "memory"
	// ErrorTypeLLM represents LLM gateway errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeTool represents tool execution errors
	ErrorTypeTool ErrorType = "tool"
	// ErrorTypePersonality represents personality engine errors
	ErrorTypePersonality ErrorType = "personality"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Memory Errors

// ErrMemoryWrite is returned when a memory mutation (add/update/delete/clear)
// fails. Mutations always surface their failure to the direct caller; silent
// loss would misinform the caller about durability.
type ErrMemoryWrite struct {
	*BaseError
	Operation string
}

func NewMemoryWrite(operation string, err error) *ErrMemoryWrite {
	return &ErrMemoryWrite{
		BaseError: NewBaseError(ErrorTypeMemory, fmt.Sprintf("memory write failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrMemoryConnectionFailed is returned when the memory backend is unreachable
type ErrMemoryConnectionFailed struct {
	*BaseError
	URI string
}

func NewMemoryConnectionFailed(uri string, err error) *ErrMemoryConnectionFailed {
	return &ErrMemoryConnectionFailed{
		BaseError: NewBaseError(ErrorTypeMemory, fmt.Sprintf("failed to connect to memory backend: %s", uri), err),
		URI:       uri,
	}
}

// LLM Errors

// ErrLLMRequestFailed is returned when an LLM gateway request fails
type ErrLLMRequestFailed struct {
	*BaseError
	Model string
}

func NewLLMRequestFailed(model string, err error) *ErrLLMRequestFailed {
	return &ErrLLMRequestFailed{
		BaseError: NewBaseError(ErrorTypeLLM, "LLM request failed", err),
		Model:     model,
	}
}

// ErrLLMEmptyResponse is returned when the gateway returns no choices
var ErrLLMEmptyResponse = NewBaseError(ErrorTypeLLM, "no choices in LLM response", nil)

// Tool Errors

// ErrToolNotFound is returned when a requested tool is not registered
type ErrToolNotFound struct {
	*BaseError
	ToolName string
}

func NewToolNotFound(toolName string) *ErrToolNotFound {
	return &ErrToolNotFound{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool not found: %s", toolName), nil),
		ToolName:  toolName,
	}
}

// ErrToolExecutionFailed is returned when tool execution fails
type ErrToolExecutionFailed struct {
	*BaseError
	ToolName string
	Reason   string
}

func NewToolExecutionFailed(toolName, reason string, err error) *ErrToolExecutionFailed {
	return &ErrToolExecutionFailed{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("tool execution failed: %s", toolName), err),
		ToolName:  toolName,
		Reason:    reason,
	}
}

// ErrToolCatalogGap is returned when the registered handlers do not cover the
// static catalog. Detected at startup, not at call time.
type ErrToolCatalogGap struct {
	*BaseError
	ToolName string
}

func NewToolCatalogGap(toolName string) *ErrToolCatalogGap {
	return &ErrToolCatalogGap{
		BaseError: NewBaseError(ErrorTypeTool, fmt.Sprintf("catalog tool has no registered handler: %s", toolName), nil),
		ToolName:  toolName,
	}
}

// Personality Errors

// ErrPersonalityLoadFailed is returned when loading personality state fails
type ErrPersonalityLoadFailed struct {
	*BaseError
	TenantID   string
	PropertyID string
}

func NewPersonalityLoadFailed(tenantID, propertyID string, err error) *ErrPersonalityLoadFailed {
	return &ErrPersonalityLoadFailed{
		BaseError:  NewBaseError(ErrorTypePersonality, fmt.Sprintf("failed to load personality for tenant %s", tenantID), err),
		TenantID:   tenantID,
		PropertyID: propertyID,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type typed interface {
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType {
	return e.Type
}

// IsErrorType checks if an error is of a specific type. Typed wrappers embed
// *BaseError, so the category check covers them too.
func IsErrorType(err error, errType ErrorType) bool {
	if t, ok := err.(typed); ok {
		return t.errorType() == errType
	}
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		if inner := wrapper.Unwrap(); inner != nil {
			return IsErrorType(inner, errType)
		}
	}
	return false
}

// IsMemoryWrite reports whether err is (or wraps) a memory write failure
func IsMemoryWrite(err error) bool {
	for err != nil {
		if _, ok := err.(*ErrMemoryWrite); ok {
			return true
		}
		wrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = wrapper.Unwrap()
	}
	return false
}

// IsRetryable checks if an error is retryable by outer infrastructure.
// The engine itself never retries; this classification is for callers.
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Backend connectivity errors are retryable
	if IsErrorType(err, ErrorTypeMemory) || IsErrorType(err, ErrorTypeLLM) {
		return true
	}
	return false
}
