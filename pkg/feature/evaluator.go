package feature

import (
	"fmt"
	"slices"
	"time"
)

type resultFn func(enabled bool, source Source, reason string) EvaluationResult

// Evaluate decides a flag's outcome for the given context. It is a pure
// function over its inputs: the same flag and context always produce the
// same result. Checks run in a fixed order and short-circuit:
//
//  1. missing flag
//  2. master kill switch
//  3. environment gate
//  4. schedule gate (scheduled flags only)
//  5. type-specific rule
//
// Evaluation never panics past this boundary; unexpected failures are
// converted into a fail-safe disabled result with Source set to SourceError.
func Evaluate(flag *FeatureFlag, ectx EvaluationContext) (result EvaluationResult) {
	at := ectx.evaluationTime()

	defer func() {
		if r := recover(); r != nil {
			key := ""
			if flag != nil {
				key = flag.Key
			}
			result = EvaluationResult{
				FlagKey:     key,
				Enabled:     false,
				Source:      SourceError,
				Reason:      fmt.Sprintf("Evaluation failed: %v", r),
				EvaluatedAt: at,
			}
		}
	}()

	if flag == nil {
		return EvaluationResult{
			Enabled:     false,
			Source:      SourceError,
			Reason:      "Flag not found",
			EvaluatedAt: at,
		}
	}

	res := func(enabled bool, source Source, reason string) EvaluationResult {
		return EvaluationResult{
			FlagKey:     flag.Key,
			Enabled:     enabled,
			Source:      source,
			Reason:      reason,
			EvaluatedAt: at,
		}
	}

	if !flag.Enabled {
		return res(false, SourceEvaluation, "Flag is disabled")
	}

	if ectx.Environment != "" && !flag.appliesToEnvironment(ectx.Environment) {
		return res(flag.DefaultValue, SourceDefault, "Environment mismatch")
	}

	if flag.Type == TypeScheduled {
		if done, r := evaluateSchedule(flag, at, res); done {
			return r
		}
	}

	switch flag.Type {
	case TypeBoolean:
		return res(true, SourceEvaluation, "Flag is enabled")

	case TypePercentage:
		if flag.Percentage == nil {
			return res(flag.DefaultValue, SourceDefault, "Percentage rollout not configured")
		}
		bucket := Bucket(flag.Key, rolloutIdentifier(ectx))
		if bucket < *flag.Percentage {
			return res(true, SourceEvaluation,
				fmt.Sprintf("Bucket %d is within rollout percentage %d", bucket, *flag.Percentage))
		}
		return res(false, SourceEvaluation,
			fmt.Sprintf("Bucket %d is outside rollout percentage %d", bucket, *flag.Percentage))

	case TypeUserTargeted:
		if flag.UserTargeting.IsEmpty() {
			return res(flag.DefaultValue, SourceDefault, "User targeting not configured")
		}
		if matchesUser(flag.UserTargeting, ectx) {
			return res(true, SourceEvaluation, "User matches targeting criteria")
		}
		return res(false, SourceEvaluation, "User does not match targeting criteria")

	case TypeOrganizationTargeted:
		if flag.OrganizationTargeting.IsEmpty() {
			return res(flag.DefaultValue, SourceDefault, "Organization targeting not configured")
		}
		if matchesOrganization(flag.OrganizationTargeting, ectx) {
			return res(true, SourceEvaluation, "Organization matches targeting criteria")
		}
		return res(false, SourceEvaluation, "Organization does not match targeting criteria")

	case TypeScheduled:
		// The schedule gate above already passed.
		return res(true, SourceEvaluation, "Within scheduled window")

	default:
		return res(flag.DefaultValue, SourceDefault,
			fmt.Sprintf("Unknown flag type %q", flag.Type))
	}
}

// evaluateSchedule runs the date-range and recurrence gates. It returns
// done=true with a fallback result when the flag is outside its window.
func evaluateSchedule(flag *FeatureFlag, at time.Time, res resultFn) (bool, EvaluationResult) {
	s := flag.Schedule
	if s == nil {
		return true, res(flag.DefaultValue, SourceDefault, "Schedule not configured")
	}
	if s.StartDate != nil && at.Before(*s.StartDate) {
		return true, res(flag.DefaultValue, SourceDefault, "Schedule start date not reached")
	}
	if s.EndDate != nil && at.After(*s.EndDate) {
		return true, res(flag.DefaultValue, SourceDefault, "Schedule end date passed")
	}
	if !s.Recurrence.Active(at) {
		return true, res(flag.DefaultValue, SourceDefault, "Outside of scheduled recurrence window")
	}
	return false, EvaluationResult{}
}

// rolloutIdentifier picks the identity a percentage rollout buckets on.
// Precedence: user ID, then email, then organization ID. With no identity
// the flag key alone is hashed, giving one global bucket.
func rolloutIdentifier(ectx EvaluationContext) string {
	switch {
	case ectx.UserID != "":
		return ectx.UserID
	case ectx.UserEmail != "":
		return ectx.UserEmail
	case ectx.OrganizationID != "":
		return ectx.OrganizationID
	default:
		return ""
	}
}

func matchesUser(t *UserTargeting, ectx EvaluationContext) bool {
	if ectx.UserID != "" && slices.Contains(t.UserIDs, ectx.UserID) {
		return true
	}
	if ectx.UserRole != "" && slices.Contains(t.UserRoles, ectx.UserRole) {
		return true
	}
	return ectx.UserEmail != "" && slices.Contains(t.UserEmails, ectx.UserEmail)
}

func matchesOrganization(t *OrganizationTargeting, ectx EvaluationContext) bool {
	if ectx.OrganizationID != "" && slices.Contains(t.OrganizationIDs, ectx.OrganizationID) {
		return true
	}
	return ectx.OrganizationType != "" && slices.Contains(t.OrganizationTypes, ectx.OrganizationType)
}
