package feature

import "time"

// EvaluationContext carries the caller-supplied facts used to decide a
// flag's outcome for a single request. All fields are optional; absent
// facts simply fail the checks that need them.
type EvaluationContext struct {
	UserID           string `json:"user_id,omitempty"`
	UserEmail        string `json:"user_email,omitempty"`
	UserRole         string `json:"user_role,omitempty"`
	OrganizationID   string `json:"organization_id,omitempty"`
	OrganizationType string `json:"organization_type,omitempty"`
	Environment      string `json:"environment,omitempty"`

	// CurrentDate overrides the evaluation instant for schedule checks.
	// Nil means the time of evaluation.
	CurrentDate *time.Time `json:"current_date,omitempty"`
}

// evaluationTime resolves the instant schedule gates are checked against.
func (c EvaluationContext) evaluationTime() time.Time {
	if c.CurrentDate != nil {
		return *c.CurrentDate
	}
	return time.Now().UTC()
}

// Source tells callers how an evaluation result was produced.
type Source string

const (
	// SourceEvaluation means a type-specific rule decided the outcome.
	SourceEvaluation Source = "evaluation"
	// SourceDefault means evaluation fell back to the flag's default value.
	SourceDefault Source = "default"
	// SourceError means evaluation could not complete and failed safe.
	SourceError Source = "error"
)

// EvaluationResult is the structured outcome of evaluating one flag.
// Reason names the rule that fired, for auditability.
type EvaluationResult struct {
	FlagKey     string    `json:"flag_key"`
	Enabled     bool      `json:"enabled"`
	Source      Source    `json:"source"`
	Reason      string    `json:"reason"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}
