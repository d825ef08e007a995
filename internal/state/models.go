package state

import (
	"fmt"
	"time"
)

// Turn roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Identity scopes every memory and personality operation.
// PropertyID is optional context, not an isolation key.
type Identity struct {
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
	PropertyID string `json:"property_id,omitempty"`
}

// Key returns the isolation key for this identity. Property is deliberately
// excluded: the same guest at two properties shares one conversation history.
func (id Identity) Key() string {
	return id.TenantID + ":" + id.UserID
}

// Validate checks that the isolation fields are present
func (id Identity) Validate() error {
	if id.TenantID == "" {
		return ErrInvalidIdentity{Field: "tenant_id", Reason: "cannot be empty"}
	}
	if id.UserID == "" {
		return ErrInvalidIdentity{Field: "user_id", Reason: "cannot be empty"}
	}
	return nil
}

// Turn is one message in a conversation. Turns are append-only per identity;
// they are never mutated after creation.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks if the Turn is well-formed
func (t Turn) Validate() error {
	if t.Role != RoleUser && t.Role != RoleAssistant {
		return ErrInvalidTurn{Field: "role", Reason: fmt.Sprintf("must be %q or %q", RoleUser, RoleAssistant)}
	}
	if t.Content == "" {
		return ErrInvalidTurn{Field: "content", Reason: "cannot be empty"}
	}
	return nil
}

// Errors

type ErrInvalidIdentity struct {
	Field  string
	Reason string
}

func (e ErrInvalidIdentity) Error() string {
	return fmt.Sprintf("invalid identity: %s - %s", e.Field, e.Reason)
}

type ErrInvalidTurn struct {
	Field  string
	Reason string
}

func (e ErrInvalidTurn) Error() string {
	return fmt.Sprintf("invalid turn: %s - %s", e.Field, e.Reason)
}
