package feature

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// FlagType determines which configuration block drives evaluation.
type FlagType string

const (
	// TypeBoolean is a plain on/off toggle with no extra configuration.
	TypeBoolean FlagType = "boolean"
	// TypePercentage rolls the feature out to a stable percentage of identifiers.
	TypePercentage FlagType = "percentage"
	// TypeUserTargeted enables the feature for specific users, roles or emails.
	TypeUserTargeted FlagType = "user_targeted"
	// TypeOrganizationTargeted enables the feature for specific organizations.
	TypeOrganizationTargeted FlagType = "organization_targeted"
	// TypeScheduled enables the feature inside a date range and optional
	// recurrence window.
	TypeScheduled FlagType = "scheduled"
)

// EnvironmentAll is the wildcard environment tag. A flag scoped to it applies
// to every environment.
const EnvironmentAll = "ALL"

// UserTargeting holds the matching criteria for user-targeted flags.
// A context matches when any of the three criteria matches (logical OR).
type UserTargeting struct {
	UserIDs    []string `json:"user_ids,omitempty"`
	UserRoles  []string `json:"user_roles,omitempty"`
	UserEmails []string `json:"user_emails,omitempty"`
}

// IsEmpty reports whether no targeting criteria are populated.
func (t *UserTargeting) IsEmpty() bool {
	return t == nil || (len(t.UserIDs) == 0 && len(t.UserRoles) == 0 && len(t.UserEmails) == 0)
}

// OrganizationTargeting holds the matching criteria for organization-targeted
// flags. A context matches when either criterion matches.
type OrganizationTargeting struct {
	OrganizationIDs   []string `json:"organization_ids,omitempty"`
	OrganizationTypes []string `json:"organization_types,omitempty"`
}

// IsEmpty reports whether no targeting criteria are populated.
func (t *OrganizationTargeting) IsEmpty() bool {
	return t == nil || (len(t.OrganizationIDs) == 0 && len(t.OrganizationTypes) == 0)
}

// FeatureFlag is a named, versioned toggle controlling whether a capability
// is active. Exactly one type-specific configuration block is authoritative,
// selected by Type.
type FeatureFlag struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        FlagType  `json:"type"`

	// Enabled is the master kill switch. A disabled flag always evaluates
	// to false regardless of its type-specific configuration.
	Enabled bool `json:"enabled"`

	// DefaultValue is the fallback used whenever evaluation cannot reach a
	// definitive answer (environment mismatch, outside schedule, missing
	// configuration).
	DefaultValue bool `json:"default_value"`

	Percentage            *int                   `json:"percentage,omitempty"`
	UserTargeting         *UserTargeting         `json:"user_targeting,omitempty"`
	OrganizationTargeting *OrganizationTargeting `json:"organization_targeting,omitempty"`
	Schedule              *Schedule              `json:"schedule,omitempty"`

	// Environments scopes the flag to a set of environment tags.
	// Empty means all environments.
	Environments []string `json:"environments,omitempty"`

	LastModifiedBy string     `json:"last_modified_by,omitempty"`
	LastModifiedAt time.Time  `json:"last_modified_at,omitzero"`
	CreatedAt      time.Time  `json:"created_at,omitzero"`
	UpdatedAt      time.Time  `json:"updated_at,omitzero"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	Version        int64      `json:"version"`
}

// Clone returns a deep copy so cached and returned records cannot be mutated
// by callers.
func (f *FeatureFlag) Clone() *FeatureFlag {
	if f == nil {
		return nil
	}
	c := *f
	if f.Percentage != nil {
		p := *f.Percentage
		c.Percentage = &p
	}
	if f.UserTargeting != nil {
		t := UserTargeting{
			UserIDs:    slices.Clone(f.UserTargeting.UserIDs),
			UserRoles:  slices.Clone(f.UserTargeting.UserRoles),
			UserEmails: slices.Clone(f.UserTargeting.UserEmails),
		}
		c.UserTargeting = &t
	}
	if f.OrganizationTargeting != nil {
		t := OrganizationTargeting{
			OrganizationIDs:   slices.Clone(f.OrganizationTargeting.OrganizationIDs),
			OrganizationTypes: slices.Clone(f.OrganizationTargeting.OrganizationTypes),
		}
		c.OrganizationTargeting = &t
	}
	if f.Schedule != nil {
		c.Schedule = f.Schedule.clone()
	}
	c.Environments = slices.Clone(f.Environments)
	if f.DeletedAt != nil {
		d := *f.DeletedAt
		c.DeletedAt = &d
	}
	return &c
}

// appliesToEnvironment reports whether the flag is active for the given
// environment tag. An empty scope or the wildcard tag matches everything.
func (f *FeatureFlag) appliesToEnvironment(env string) bool {
	if len(f.Environments) == 0 || env == "" {
		return true
	}
	return slices.Contains(f.Environments, env) || slices.Contains(f.Environments, EnvironmentAll)
}
