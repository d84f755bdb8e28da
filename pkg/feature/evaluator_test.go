package feature_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxori-systems/fluxori-sub012/pkg/feature"
)

func boolFlag(key string, enabled bool) *feature.FeatureFlag {
	return &feature.FeatureFlag{
		Key:     key,
		Name:    key,
		Type:    feature.TypeBoolean,
		Enabled: enabled,
	}
}

func TestEvaluate_MissingFlag(t *testing.T) {
	t.Parallel()

	result := feature.Evaluate(nil, feature.EvaluationContext{})

	assert.False(t, result.Enabled)
	assert.Equal(t, feature.SourceError, result.Source)
	assert.Equal(t, "Flag not found", result.Reason)
	assert.False(t, result.EvaluatedAt.IsZero())
}

func TestEvaluate_KillSwitchDominates(t *testing.T) {
	t.Parallel()

	// Disabled wins over every type rule, even a targeting match.
	flag := &feature.FeatureFlag{
		Key:           "targeted",
		Name:          "Targeted",
		Type:          feature.TypeUserTargeted,
		Enabled:       false,
		DefaultValue:  true,
		UserTargeting: &feature.UserTargeting{UserIDs: []string{"u1"}},
	}

	result := feature.Evaluate(flag, feature.EvaluationContext{UserID: "u1"})

	assert.False(t, result.Enabled)
	assert.Equal(t, feature.SourceEvaluation, result.Source)
	assert.Equal(t, "Flag is disabled", result.Reason)
}

func TestEvaluate_EnvironmentGate(t *testing.T) {
	t.Parallel()

	flag := boolFlag("env-scoped", true)
	flag.Environments = []string{"production"}
	flag.DefaultValue = true

	t.Run("mismatch falls back to default", func(t *testing.T) {
		t.Parallel()

		result := feature.Evaluate(flag, feature.EvaluationContext{Environment: "staging"})
		assert.True(t, result.Enabled)
		assert.Equal(t, feature.SourceDefault, result.Source)
		assert.Equal(t, "Environment mismatch", result.Reason)
	})

	t.Run("match proceeds to type rule", func(t *testing.T) {
		t.Parallel()

		result := feature.Evaluate(flag, feature.EvaluationContext{Environment: "production"})
		assert.True(t, result.Enabled)
		assert.Equal(t, feature.SourceEvaluation, result.Source)
	})

	t.Run("empty context environment skips the gate", func(t *testing.T) {
		t.Parallel()

		result := feature.Evaluate(flag, feature.EvaluationContext{})
		assert.Equal(t, feature.SourceEvaluation, result.Source)
	})

	t.Run("wildcard tag matches any environment", func(t *testing.T) {
		t.Parallel()

		all := boolFlag("everywhere", true)
		all.Environments = []string{feature.EnvironmentAll}
		result := feature.Evaluate(all, feature.EvaluationContext{Environment: "qa"})
		assert.Equal(t, feature.SourceEvaluation, result.Source)
	})

	t.Run("unscoped flag matches any environment", func(t *testing.T) {
		t.Parallel()

		result := feature.Evaluate(boolFlag("unscoped", true), feature.EvaluationContext{Environment: "qa"})
		assert.Equal(t, feature.SourceEvaluation, result.Source)
	})
}

func TestEvaluate_Boolean(t *testing.T) {
	t.Parallel()

	result := feature.Evaluate(boolFlag("simple", true), feature.EvaluationContext{})

	assert.True(t, result.Enabled)
	assert.Equal(t, feature.SourceEvaluation, result.Source)
	assert.Equal(t, "Flag is enabled", result.Reason)
	assert.Equal(t, "simple", result.FlagKey)
}

func TestEvaluate_Percentage(t *testing.T) {
	t.Parallel()

	t.Run("deterministic across repeated evaluations", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key:        "new-dashboard",
			Name:       "New dashboard",
			Type:       feature.TypePercentage,
			Enabled:    true,
			Percentage: intPtr(30),
		}
		ectx := feature.EvaluationContext{UserID: "user-42"}

		first := feature.Evaluate(flag, ectx)
		bucket := feature.Bucket("new-dashboard", "user-42")
		assert.Contains(t, first.Reason, fmt.Sprintf("%d", bucket))
		assert.Contains(t, first.Reason, "30")
		assert.Equal(t, bucket < 30, first.Enabled)

		for n := 0; n < 10; n++ {
			again := feature.Evaluate(flag, ectx)
			assert.Equal(t, first.Enabled, again.Enabled)
			assert.Equal(t, first.Reason, again.Reason)
		}
	})

	t.Run("zero percent disables everyone", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "nobody", Name: "n", Type: feature.TypePercentage,
			Enabled: true, Percentage: intPtr(0),
		}
		for i := 0; i < 50; i++ {
			result := feature.Evaluate(flag, feature.EvaluationContext{UserID: fmt.Sprintf("u%d", i)})
			assert.False(t, result.Enabled)
		}
	})

	t.Run("hundred percent enables everyone", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "everybody", Name: "e", Type: feature.TypePercentage,
			Enabled: true, Percentage: intPtr(100),
		}
		for i := 0; i < 50; i++ {
			result := feature.Evaluate(flag, feature.EvaluationContext{UserID: fmt.Sprintf("u%d", i)})
			assert.True(t, result.Enabled)
		}
	})

	t.Run("identifier precedence", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "precedence", Name: "p", Type: feature.TypePercentage,
			Enabled: true, Percentage: intPtr(50),
		}

		// With a user ID present, email and organization are ignored.
		withAll := feature.Evaluate(flag, feature.EvaluationContext{
			UserID: "u1", UserEmail: "a@b.c", OrganizationID: "org-1",
		})
		withUserOnly := feature.Evaluate(flag, feature.EvaluationContext{UserID: "u1"})
		assert.Equal(t, withUserOnly.Reason, withAll.Reason)

		// Without a user ID the email is used.
		withEmail := feature.Evaluate(flag, feature.EvaluationContext{
			UserEmail: "a@b.c", OrganizationID: "org-1",
		})
		emailOnly := feature.Evaluate(flag, feature.EvaluationContext{UserEmail: "a@b.c"})
		assert.Equal(t, emailOnly.Reason, withEmail.Reason)
	})

	t.Run("missing percentage falls back to default", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "broken", Name: "b", Type: feature.TypePercentage,
			Enabled: true, DefaultValue: true,
		}
		result := feature.Evaluate(flag, feature.EvaluationContext{UserID: "u1"})
		assert.True(t, result.Enabled)
		assert.Equal(t, feature.SourceDefault, result.Source)
	})
}

func TestEvaluate_UserTargeted(t *testing.T) {
	t.Parallel()

	flag := &feature.FeatureFlag{
		Key:     "beta-access",
		Name:    "Beta access",
		Type:    feature.TypeUserTargeted,
		Enabled: true,
		UserTargeting: &feature.UserTargeting{
			UserIDs:    []string{"u1"},
			UserRoles:  []string{"admin"},
			UserEmails: []string{"vip@example.com"},
		},
	}

	tests := []struct {
		name string
		ectx feature.EvaluationContext
		want bool
	}{
		{name: "matching user id", ectx: feature.EvaluationContext{UserID: "u1"}, want: true},
		{name: "non-matching user id", ectx: feature.EvaluationContext{UserID: "u2"}, want: false},
		{name: "matching role", ectx: feature.EvaluationContext{UserID: "u2", UserRole: "admin"}, want: true},
		{name: "matching email", ectx: feature.EvaluationContext{UserEmail: "vip@example.com"}, want: true},
		{name: "empty context never matches", ectx: feature.EvaluationContext{}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := feature.Evaluate(flag, tt.ectx)
			assert.Equal(t, tt.want, result.Enabled)
			assert.Equal(t, feature.SourceEvaluation, result.Source)
		})
	}
}

func TestEvaluate_OrganizationTargeted(t *testing.T) {
	t.Parallel()

	flag := &feature.FeatureFlag{
		Key:     "enterprise-suite",
		Name:    "Enterprise suite",
		Type:    feature.TypeOrganizationTargeted,
		Enabled: true,
		OrganizationTargeting: &feature.OrganizationTargeting{
			OrganizationIDs:   []string{"org-1"},
			OrganizationTypes: []string{"enterprise"},
		},
	}

	assert.True(t, feature.Evaluate(flag, feature.EvaluationContext{OrganizationID: "org-1"}).Enabled)
	assert.True(t, feature.Evaluate(flag, feature.EvaluationContext{OrganizationType: "enterprise"}).Enabled)
	assert.False(t, feature.Evaluate(flag, feature.EvaluationContext{OrganizationID: "org-2"}).Enabled)
	assert.False(t, feature.Evaluate(flag, feature.EvaluationContext{}).Enabled)
}

func TestEvaluate_Scheduled(t *testing.T) {
	t.Parallel()

	now := monday10am

	t.Run("start date not reached", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "launch", Name: "Launch", Type: feature.TypeScheduled,
			Enabled:      true,
			DefaultValue: false,
			Schedule:     &feature.Schedule{StartDate: timePtr(now.Add(24 * time.Hour))},
		}
		result := feature.Evaluate(flag, feature.EvaluationContext{CurrentDate: &now})

		assert.False(t, result.Enabled)
		assert.Equal(t, feature.SourceDefault, result.Source)
		assert.Contains(t, result.Reason, "start date not reached")
	})

	t.Run("end date passed", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "sunset", Name: "Sunset", Type: feature.TypeScheduled,
			Enabled:      true,
			DefaultValue: true,
			Schedule:     &feature.Schedule{EndDate: timePtr(now.Add(-24 * time.Hour))},
		}
		result := feature.Evaluate(flag, feature.EvaluationContext{CurrentDate: &now})

		assert.True(t, result.Enabled, "falls back to the default value")
		assert.Equal(t, feature.SourceDefault, result.Source)
		assert.Contains(t, result.Reason, "end date passed")
	})

	t.Run("inside window", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "window", Name: "Window", Type: feature.TypeScheduled,
			Enabled: true,
			Schedule: &feature.Schedule{
				StartDate: timePtr(now.Add(-time.Hour)),
				EndDate:   timePtr(now.Add(time.Hour)),
			},
		}
		result := feature.Evaluate(flag, feature.EvaluationContext{CurrentDate: &now})

		assert.True(t, result.Enabled)
		assert.Equal(t, feature.SourceEvaluation, result.Source)
		assert.Equal(t, "Within scheduled window", result.Reason)
	})

	t.Run("outside recurrence window", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "office-hours", Name: "Office hours", Type: feature.TypeScheduled,
			Enabled:      true,
			DefaultValue: false,
			Schedule: &feature.Schedule{
				Recurrence: &feature.Recurrence{
					Type:       feature.RecurrenceWeekly,
					DaysOfWeek: []int{0, 6},
				},
			},
		}
		result := feature.Evaluate(flag, feature.EvaluationContext{CurrentDate: &now})

		assert.False(t, result.Enabled)
		assert.Equal(t, feature.SourceDefault, result.Source)
		assert.Contains(t, result.Reason, "recurrence window")
	})

	t.Run("evaluation time honors context date", func(t *testing.T) {
		t.Parallel()

		flag := &feature.FeatureFlag{
			Key: "timed", Name: "Timed", Type: feature.TypeScheduled,
			Enabled:  true,
			Schedule: &feature.Schedule{StartDate: timePtr(now)},
		}
		before := now.Add(-time.Minute)

		assert.False(t, feature.Evaluate(flag, feature.EvaluationContext{CurrentDate: &before}).Enabled)
		assert.True(t, feature.Evaluate(flag, feature.EvaluationContext{CurrentDate: &now}).Enabled)
	})
}

func TestEvaluate_UnknownType(t *testing.T) {
	t.Parallel()

	flag := &feature.FeatureFlag{
		Key: "odd", Name: "Odd", Type: "gradual",
		Enabled: true, DefaultValue: true,
	}
	result := feature.Evaluate(flag, feature.EvaluationContext{})

	assert.True(t, result.Enabled)
	assert.Equal(t, feature.SourceDefault, result.Source)
	assert.Contains(t, result.Reason, "gradual")
}

func TestEvaluate_TargetingNotConfigured(t *testing.T) {
	t.Parallel()

	flag := &feature.FeatureFlag{
		Key: "half-built", Name: "Half built", Type: feature.TypeUserTargeted,
		Enabled: true, DefaultValue: true,
	}
	result := feature.Evaluate(flag, feature.EvaluationContext{UserID: "u1"})

	assert.True(t, result.Enabled)
	assert.Equal(t, feature.SourceDefault, result.Source)
}

func TestEvaluate_ResultMetadata(t *testing.T) {
	t.Parallel()

	now := monday10am
	result := feature.Evaluate(boolFlag("meta", true), feature.EvaluationContext{CurrentDate: &now})

	require.Equal(t, "meta", result.FlagKey)
	assert.Equal(t, now, result.EvaluatedAt)
}
