package timeslot

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ===============================
// Series Expander
// ===============================

var (
	// ErrSeriesTooSmall indicates a series with fewer than two instances.
	ErrSeriesTooSmall = errors.New("timeslot: series needs at least 2 instances")
	// ErrSeriesNotRecurring indicates a series request with a single recurrence.
	ErrSeriesNotRecurring = errors.New("timeslot: series can only be recurring")
	// ErrIllegalRecurrence indicates an unknown recurrence value.
	ErrIllegalRecurrence = errors.New("timeslot: illegal recurrence")
)

// NewSeriesID mints the shared identifier for a freshly expanded series.
func NewSeriesID() string {
	return uuid.NewString()
}

// Shift moves t by i recurrence units. Monthly and yearly shifts follow
// calendar arithmetic, so Jan 31 + 1 month normalizes per time.AddDate.
func Shift(t time.Time, r Recurrence, i int) time.Time {
	switch r {
	case RecurrenceDaily:
		return t.AddDate(0, 0, i)
	case RecurrenceWeekly:
		return t.AddDate(0, 0, 7*i)
	case RecurrenceMonthly:
		return t.AddDate(0, i, 0)
	case RecurrenceYearly:
		return t.AddDate(i, 0, 0)
	}
	return t
}

// ExpandSeries generates amount instances from the template, instance i
// shifted by i recurrence units, all sharing one fresh series ID and the
// series metadata. The template's ID is not propagated.
func ExpandSeries(template Interval, r Recurrence, amount int) ([]Interval, error) {
	if !ValidRecurrence(r) {
		return nil, ErrIllegalRecurrence
	}
	if r == RecurrenceSingle {
		return nil, ErrSeriesNotRecurring
	}
	if amount < 2 {
		return nil, ErrSeriesTooSmall
	}

	seriesID := NewSeriesID()
	instances := make([]Interval, 0, amount)
	for i := 0; i < amount; i++ {
		inst := template
		inst.ID = 0
		inst.Start = Shift(template.Start, r, i)
		inst.End = Shift(template.End, r, i)
		inst.SeriesID = &seriesID
		inst.Amount = amount
		inst.Recurrence = r
		inst.IsDirty = false
		instances = append(instances, inst)
	}
	return instances, nil
}

// SeriesAnchor returns the chronologically earliest member that has not been
// detached by an individual edit. Series-wide updates re-apply their offset
// math relative to this instance.
func SeriesAnchor(members []Interval) (Interval, bool) {
	var anchor Interval
	found := false
	for _, m := range members {
		if m.IsDirty {
			continue
		}
		if !found || m.Start.Before(anchor.Start) {
			anchor = m
			found = true
		}
	}
	return anchor, found
}

// MaxStart is the "last start of series" aggregate: max(start) over non-dirty
// members, nil when no member qualifies.
func MaxStart(members []Interval) *time.Time {
	var max *time.Time
	for _, m := range members {
		if m.IsDirty {
			continue
		}
		s := m.Start
		if max == nil || s.After(*max) {
			max = &s
		}
	}
	return max
}
