// Package audit defines the audit trail contract used by domain services.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"shoppos/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entity types recorded in the trail.
const (
	EntityBill    = "bill"
	EntityProduct = "product"
)

// Recorder writes audit entries. Implementations join the transaction in ctx.
type Recorder interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
}

// Entry is one change read back from the trail. Changes is the JSON snapshot
// passed to LogChange, already decompressed.
type Entry struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   id.ID           `json:"entity_id"`
	Action     Action          `json:"action"`
	UserID     string          `json:"user_id,omitempty"`
	UserEmail  string          `json:"user_email,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NopRecorder discards audit entries.
type NopRecorder struct{}

func (NopRecorder) LogChange(context.Context, string, id.ID, Action, map[string]any) error {
	return nil
}
