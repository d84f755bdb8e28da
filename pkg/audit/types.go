package audit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Action classifies what a mutation did to a flag.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
	ActionToggled Action = "toggled"
)

// FieldAll is the synthetic field name used for whole-record changes on
// create and delete entries.
const FieldAll = "all"

// FieldChange records one field transition inside an entry.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// Entry is one immutable line of flag history. Entries are append-only:
// no update or delete is ever applied to an entry once written.
type Entry struct {
	ID          string        `json:"id"`
	FlagID      uuid.UUID     `json:"flag_id"`
	FlagKey     string        `json:"flag_key"`
	Action      Action        `json:"action"`
	PerformedBy string        `json:"performed_by"`
	Changes     []FieldChange `json:"changes"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Validate checks that the entry carries the required identity fields.
func (e *Entry) Validate() error {
	if e.FlagID == uuid.Nil {
		return fmt.Errorf("%w: flag id is required", ErrEntryValidation)
	}
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEntryValidation)
	}
	return nil
}
