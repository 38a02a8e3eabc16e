package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSeriesDaily(t *testing.T) {
	start := time.Date(2022, 2, 23, 12, 0, 0, 0, time.UTC)
	template := Interval{
		RoomID: 1,
		Kind:   KindAvailable,
		Start:  start,
		End:    start.Add(4 * time.Hour),
	}

	instances, err := ExpandSeries(template, RecurrenceDaily, 3)
	require.NoError(t, err)
	require.Len(t, instances, 3)

	seriesID := instances[0].SeriesID
	require.NotNil(t, seriesID)

	for i, inst := range instances {
		assert.Equal(t, start.AddDate(0, 0, i), inst.Start, "instance %d start", i)
		assert.Equal(t, 4*time.Hour, inst.Duration(), "instance %d duration", i)
		assert.Equal(t, seriesID, inst.SeriesID, "instance %d series id", i)
		assert.Equal(t, 3, inst.Amount)
		assert.Equal(t, RecurrenceDaily, inst.Recurrence)
		assert.False(t, inst.IsDirty)
		assert.Zero(t, inst.ID)
	}
}

func TestExpandSeriesValidation(t *testing.T) {
	template := Interval{Start: at(0, 10), End: at(0, 12)}

	tests := []struct {
		name       string
		recurrence Recurrence
		amount     int
		wantErr    error
	}{
		{"amount too small", RecurrenceDaily, 1, ErrSeriesTooSmall},
		{"single recurrence", RecurrenceSingle, 3, ErrSeriesNotRecurring},
		{"unknown recurrence", Recurrence("fortnightly"), 3, ErrIllegalRecurrence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandSeries(template, tt.recurrence, tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExpandSeriesMintsFreshID(t *testing.T) {
	template := Interval{Start: at(0, 10), End: at(0, 12)}

	first, err := ExpandSeries(template, RecurrenceWeekly, 2)
	require.NoError(t, err)
	second, err := ExpandSeries(template, RecurrenceWeekly, 2)
	require.NoError(t, err)

	assert.NotEqual(t, *first[0].SeriesID, *second[0].SeriesID)
}

func TestShiftFollowsCalendarArithmetic(t *testing.T) {
	jan31 := time.Date(2022, 1, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		recurrence Recurrence
		i          int
		want       time.Time
	}{
		{"daily", RecurrenceDaily, 2, time.Date(2022, 2, 2, 9, 0, 0, 0, time.UTC)},
		{"weekly", RecurrenceWeekly, 1, time.Date(2022, 2, 7, 9, 0, 0, 0, time.UTC)},
		// Jan 31 + 1 month normalizes to Mar 3 per time.AddDate.
		{"monthly", RecurrenceMonthly, 1, time.Date(2022, 3, 3, 9, 0, 0, 0, time.UTC)},
		{"yearly", RecurrenceYearly, 1, time.Date(2023, 1, 31, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shift(jan31, tt.recurrence, tt.i))
		})
	}
}

func TestSeriesAnchorSkipsDirtyMembers(t *testing.T) {
	first := available(1, at(0, 8), at(0, 10))
	first.IsDirty = true
	second := available(2, at(1, 8), at(1, 10))
	third := available(3, at(2, 8), at(2, 10))

	anchor, ok := SeriesAnchor([]Interval{third, first, second})
	require.True(t, ok)
	assert.Equal(t, uint(2), anchor.ID)
}

func TestSeriesAnchorAllDirty(t *testing.T) {
	member := available(1, at(0, 8), at(0, 10))
	member.IsDirty = true

	_, ok := SeriesAnchor([]Interval{member})
	assert.False(t, ok)
}

func TestMaxStart(t *testing.T) {
	first := available(1, at(0, 8), at(0, 10))
	last := available(2, at(3, 8), at(3, 10))
	detached := available(3, at(5, 8), at(5, 10))
	detached.IsDirty = true

	got := MaxStart([]Interval{first, last, detached})
	require.NotNil(t, got)
	assert.Equal(t, last.Start, *got)

	assert.Nil(t, MaxStart([]Interval{detached}))
	assert.Nil(t, MaxStart(nil))
}
