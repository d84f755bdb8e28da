package feature

import "slices"

// FlagUpdate is a partial flag definition. Nil fields are left unchanged;
// set fields replace the current value. The flag key, identity and
// lifecycle fields are not updatable.
type FlagUpdate struct {
	Name                  *string
	Description           *string
	Type                  *FlagType
	Enabled               *bool
	DefaultValue          *bool
	Percentage            *int
	UserTargeting         *UserTargeting
	OrganizationTargeting *OrganizationTargeting
	Environments          *[]string
	Schedule              *Schedule
}

// apply copies the set fields onto the flag.
func (u FlagUpdate) apply(f *FeatureFlag) {
	if u.Name != nil {
		f.Name = *u.Name
	}
	if u.Description != nil {
		f.Description = *u.Description
	}
	if u.Type != nil {
		f.Type = *u.Type
	}
	if u.Enabled != nil {
		f.Enabled = *u.Enabled
	}
	if u.DefaultValue != nil {
		f.DefaultValue = *u.DefaultValue
	}
	if u.Percentage != nil {
		p := *u.Percentage
		f.Percentage = &p
	}
	if u.UserTargeting != nil {
		t := *u.UserTargeting
		f.UserTargeting = &t
	}
	if u.OrganizationTargeting != nil {
		t := *u.OrganizationTargeting
		f.OrganizationTargeting = &t
	}
	if u.Environments != nil {
		f.Environments = slices.Clone(*u.Environments)
	}
	if u.Schedule != nil {
		f.Schedule = u.Schedule.clone()
	}
}
