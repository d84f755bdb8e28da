// Package audit keeps an append-only, diff-based history of feature flag
// mutations.
//
// Every create, update, toggle and delete produces one Entry listing the
// fields that actually changed. Entries are immutable once written and are
// queried by flag ID, newest first.
//
// # Usage
//
//	recorder := audit.NewRecorder(audit.NewMemoryStorage())
//
//	err := recorder.Record(ctx, audit.Entry{
//		FlagID:      flag.ID,
//		FlagKey:     flag.Key,
//		Action:      audit.ActionToggled,
//		PerformedBy: actorID,
//		Changes: []audit.FieldChange{
//			{Field: "enabled", OldValue: false, NewValue: true},
//		},
//	})
//
// Storage implementations are provided for memory, MongoDB and PostgreSQL.
// Create and delete entries carry a single synthetic change with
// Field set to audit.FieldAll holding the whole record.
package audit
