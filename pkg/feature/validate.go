package feature

import (
	"errors"
	"fmt"
	"regexp"
)

// keyPattern keeps flag keys URL- and config-file-safe.
var keyPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidateKey checks the flag key format: lowercase alphanumerics and hyphens.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidFlag)
	}
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: key %q must match %s", ErrInvalidFlag, key, keyPattern.String())
	}
	return nil
}

// Validate checks the flag definition, including that the configuration
// block required by its type is present and well formed. It is called
// before any persistence attempt.
func (f *FeatureFlag) Validate() error {
	if f == nil {
		return fmt.Errorf("%w: flag cannot be nil", ErrInvalidFlag)
	}
	if err := ValidateKey(f.Key); err != nil {
		return err
	}
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFlag)
	}

	switch f.Type {
	case TypeBoolean:
		return nil
	case TypePercentage:
		if f.Percentage == nil {
			return fmt.Errorf("%w: percentage flag requires a percentage", ErrInvalidFlag)
		}
		if *f.Percentage < 0 || *f.Percentage > 100 {
			return fmt.Errorf("%w: percentage %d must be between 0 and 100", ErrInvalidFlag, *f.Percentage)
		}
		return nil
	case TypeUserTargeted:
		if f.UserTargeting.IsEmpty() {
			return fmt.Errorf("%w: user-targeted flag requires at least one targeting criterion", ErrInvalidFlag)
		}
		return nil
	case TypeOrganizationTargeted:
		if f.OrganizationTargeting.IsEmpty() {
			return fmt.Errorf("%w: organization-targeted flag requires at least one targeting criterion", ErrInvalidFlag)
		}
		return nil
	case TypeScheduled:
		if f.Schedule.IsEmpty() {
			return fmt.Errorf("%w: scheduled flag requires a start date, end date or recurrence", ErrInvalidFlag)
		}
		return validateSchedule(f.Schedule)
	case "":
		return fmt.Errorf("%w: type is required", ErrInvalidFlag)
	default:
		return fmt.Errorf("%w: unknown flag type %q", ErrInvalidFlag, f.Type)
	}
}

func validateSchedule(s *Schedule) error {
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return fmt.Errorf("%w: schedule end date precedes start date", ErrInvalidFlag)
	}
	r := s.Recurrence
	if r == nil {
		return nil
	}
	if r.Type != RecurrenceOnce && r.Type != RecurrenceWeekly {
		return fmt.Errorf("%w: unknown recurrence type %q", ErrInvalidFlag, r.Type)
	}
	for _, day := range r.DaysOfWeek {
		if day < 0 || day > 6 {
			return fmt.Errorf("%w: day of week %d out of range 0-6", ErrInvalidFlag, day)
		}
	}
	var errs []error
	for _, tr := range r.TimeRanges {
		start, err := parseMinutes(tr.Start)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		end, err := parseMinutes(tr.End)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if end < start {
			errs = append(errs, fmt.Errorf("time range %s-%s wraps past midnight", tr.Start, tr.End))
		}
	}
	if len(errs) > 0 {
		return errors.Join(ErrInvalidFlag, errors.Join(errs...))
	}
	return nil
}
