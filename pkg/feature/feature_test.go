package feature_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxori-systems/fluxori-sub012/pkg/feature"
)

func TestFeatureFlag_Clone(t *testing.T) {
	t.Parallel()

	t.Run("nil flag clones to nil", func(t *testing.T) {
		t.Parallel()

		var f *feature.FeatureFlag
		assert.Nil(t, f.Clone())
	})

	t.Run("mutating the clone leaves the original intact", func(t *testing.T) {
		t.Parallel()

		deleted := monday10am
		original := &feature.FeatureFlag{
			ID:         uuid.New(),
			Key:        "clone-me",
			Name:       "Clone me",
			Type:       feature.TypePercentage,
			Enabled:    true,
			Percentage: intPtr(30),
			UserTargeting: &feature.UserTargeting{
				UserIDs: []string{"u1", "u2"},
			},
			OrganizationTargeting: &feature.OrganizationTargeting{
				OrganizationIDs: []string{"org-1"},
			},
			Schedule: &feature.Schedule{
				StartDate: timePtr(monday10am),
				Recurrence: &feature.Recurrence{
					Type:       feature.RecurrenceWeekly,
					DaysOfWeek: []int{1, 2},
					TimeRanges: []feature.TimeRange{{Start: "09:00", End: "17:00"}},
				},
			},
			Environments: []string{"production"},
			DeletedAt:    &deleted,
			Version:      3,
		}

		clone := original.Clone()
		require.Equal(t, original, clone)

		*clone.Percentage = 99
		clone.UserTargeting.UserIDs[0] = "mutated"
		clone.OrganizationTargeting.OrganizationIDs[0] = "mutated"
		clone.Environments[0] = "mutated"
		clone.Schedule.Recurrence.DaysOfWeek[0] = 6
		*clone.Schedule.StartDate = clone.Schedule.StartDate.Add(time.Hour)
		*clone.DeletedAt = deleted.Add(time.Hour)

		assert.Equal(t, 30, *original.Percentage)
		assert.Equal(t, "u1", original.UserTargeting.UserIDs[0])
		assert.Equal(t, "org-1", original.OrganizationTargeting.OrganizationIDs[0])
		assert.Equal(t, "production", original.Environments[0])
		assert.Equal(t, 1, original.Schedule.Recurrence.DaysOfWeek[0])
		assert.Equal(t, monday10am, *original.Schedule.StartDate)
		assert.Equal(t, deleted, *original.DeletedAt)
	})
}

func TestUserTargeting_IsEmpty(t *testing.T) {
	t.Parallel()

	var nilTargeting *feature.UserTargeting
	assert.True(t, nilTargeting.IsEmpty())
	assert.True(t, (&feature.UserTargeting{}).IsEmpty())
	assert.False(t, (&feature.UserTargeting{UserRoles: []string{"admin"}}).IsEmpty())
}

func TestOrganizationTargeting_IsEmpty(t *testing.T) {
	t.Parallel()

	var nilTargeting *feature.OrganizationTargeting
	assert.True(t, nilTargeting.IsEmpty())
	assert.True(t, (&feature.OrganizationTargeting{}).IsEmpty())
	assert.False(t, (&feature.OrganizationTargeting{OrganizationIDs: []string{"o"}}).IsEmpty())
}
