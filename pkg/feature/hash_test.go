package feature_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxori-systems/fluxori-sub012/pkg/feature"
)

func TestBucket_KnownValues(t *testing.T) {
	t.Parallel()

	// Hand-computed with h = (h<<5) - h + c over int32.
	tests := []struct {
		flagKey    string
		identifier string
		want       int
	}{
		{flagKey: "", identifier: "", want: 0},
		{flagKey: "a", identifier: "", want: 97},
		{flagKey: "a", identifier: "b", want: 5}, // 97*31+98 = 3105
		{flagKey: "ab", identifier: "", want: 5},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprintf("%s+%s", tt.flagKey, tt.identifier), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, feature.Bucket(tt.flagKey, tt.identifier))
		})
	}
}

func TestBucket_Deterministic(t *testing.T) {
	t.Parallel()

	first := feature.Bucket("new-dashboard", "user-42")
	for n := 0; n < 10; n++ {
		assert.Equal(t, first, feature.Bucket("new-dashboard", "user-42"))
	}
}

func TestBucket_ConcatenatesKeyAndIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		feature.Bucket("new-dashboard", "user-42"),
		feature.Bucket("new-dashboarduser-42", ""))
}

func TestBucket_Range(t *testing.T) {
	t.Parallel()

	for i := 0; i < 1000; i++ {
		b := feature.Bucket("rollout-flag", fmt.Sprintf("user-%d", i))
		assert.GreaterOrEqual(t, b, 0)
		assert.Less(t, b, 100)
	}
}

func TestBucket_LongInputWrapsWithoutPanic(t *testing.T) {
	t.Parallel()

	// Long inputs overflow int32 many times over; the bucket must still
	// land in range.
	long := strings.Repeat("abcdefgh", 512)
	b := feature.Bucket(long, long)
	assert.GreaterOrEqual(t, b, 0)
	assert.Less(t, b, 100)
}

func TestBucket_DistinctIdentifiersSpread(t *testing.T) {
	t.Parallel()

	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[feature.Bucket("spread-check", fmt.Sprintf("id-%d", i))] = true
	}
	// The rolling hash is weak but it must not collapse everything into a
	// handful of buckets.
	assert.Greater(t, len(seen), 20)
}
