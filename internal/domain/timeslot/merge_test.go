package timeslot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanMergeChainsAdjacentIntervals(t *testing.T) {
	// [0,4) and [8,12) already exist; inserting [4,8) bridges the chain
	// into a single [0,12).
	existing := []Interval{
		available(1, at(0, 0), at(0, 4)),
		available(2, at(0, 8), at(0, 12)),
	}
	target := available(0, at(0, 4), at(0, 8))

	plan := PlanMerge(existing, target)

	assert.True(t, plan.Merged())
	assert.Len(t, plan.Absorbed, 2)
	assert.Equal(t, at(0, 0), plan.Result.Start)
	assert.Equal(t, at(0, 12), plan.Result.End)
	assert.Equal(t, KindAvailable, plan.Result.Kind)
}

func TestPlanMergeIdempotent(t *testing.T) {
	merged := available(1, at(0, 0), at(0, 12))
	existing := []Interval{merged}

	plan := PlanMerge(existing, merged)

	assert.False(t, plan.Merged())
	assert.Equal(t, merged.Start, plan.Result.Start)
	assert.Equal(t, merged.End, plan.Result.End)
}

func TestPlanMergeRequiresExactAdjacency(t *testing.T) {
	tests := []struct {
		name     string
		existing Interval
	}{
		{"gap", available(1, at(0, 0), at(0, 3))},
		{"overlap", available(1, at(0, 0), at(0, 5))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanMerge([]Interval{tt.existing}, available(0, at(0, 4), at(0, 8)))
			assert.False(t, plan.Merged())
		})
	}
}

func TestPlanMergeSkipsOtherKinds(t *testing.T) {
	existing := []Interval{unavailable(1, at(0, 0), at(0, 4))}
	target := available(0, at(0, 4), at(0, 8))

	plan := PlanMerge(existing, target)
	assert.False(t, plan.Merged())
}

func TestPlanMergeNeverMergesAppointments(t *testing.T) {
	existing := []Interval{appointment(1, at(0, 10), at(0, 12))}
	target := appointment(0, at(0, 12), at(0, 14))

	plan := PlanMerge(existing, target)
	assert.False(t, plan.Merged())
	assert.Equal(t, target.Start, plan.Result.Start)
	assert.Equal(t, target.End, plan.Result.End)
}

func TestPlanMergeKeepsTargetIdentity(t *testing.T) {
	existing := []Interval{available(1, at(0, 0), at(0, 4))}
	target := available(9, at(0, 4), at(0, 8))

	plan := PlanMerge(existing, target)

	assert.True(t, plan.Merged())
	assert.Equal(t, uint(9), plan.Result.ID)
	assert.Equal(t, uint(1), plan.Absorbed[0].ID)
}
