package feature

import (
	"reflect"

	"github.com/fluxori-systems/fluxori-sub012/pkg/audit"
)

// diffFlags compares the mutable fields of two flag records and returns one
// FieldChange per field whose value actually differs. Deep equality is used
// so identical targeting blocks or schedules produce no change record.
func diffFlags(old, updated *FeatureFlag) []audit.FieldChange {
	var changes []audit.FieldChange

	add := func(field string, oldValue, newValue any) {
		if !reflect.DeepEqual(oldValue, newValue) {
			changes = append(changes, audit.FieldChange{
				Field:    field,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}

	add("name", old.Name, updated.Name)
	add("description", old.Description, updated.Description)
	add("type", old.Type, updated.Type)
	add("enabled", old.Enabled, updated.Enabled)
	add("default_value", old.DefaultValue, updated.DefaultValue)
	add("percentage", old.Percentage, updated.Percentage)
	add("user_targeting", old.UserTargeting, updated.UserTargeting)
	add("organization_targeting", old.OrganizationTargeting, updated.OrganizationTargeting)
	add("environments", old.Environments, updated.Environments)
	add("schedule", old.Schedule, updated.Schedule)

	return changes
}
