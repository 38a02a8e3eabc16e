package timeslot

import (
	"sort"
	"time"
)

// ===============================
// Conflict Resolver
// ===============================

type ConflictReason string

const (
	ReasonNone               ConflictReason = "none"
	ReasonOutsideAvailable   ConflictReason = "outside_available"
	ReasonInsideUnavailable  ConflictReason = "inside_unavailable"
	ReasonTooManyConcurrent  ConflictReason = "too_many_concurrent"
	ReasonConflictingBooking ConflictReason = "conflicting_booking"
	ReasonSameTypeOverlap    ConflictReason = "same_type_overlap"
)

// Message is the user-facing text for a 409 response.
func (r ConflictReason) Message() string {
	switch r {
	case ReasonOutsideAvailable:
		return "Timeslot is not within an available timeslot."
	case ReasonInsideUnavailable:
		return "Timeslot overlaps an unavailable timeslot."
	case ReasonTooManyConcurrent:
		return "Too many concurrent bookings."
	case ReasonConflictingBooking:
		return "Cannot create unavailable timeslot because at least one booked appointment overlaps it."
	case ReasonSameTypeOverlap:
		return "Timeslot overlaps an existing timeslot of the same type."
	}
	return ""
}

type ConflictResult struct {
	Reason ConflictReason `json:"reason"`
}

func (r ConflictResult) Conflict() bool {
	return r.Reason != ReasonNone
}

func noConflict() ConflictResult {
	return ConflictResult{Reason: ReasonNone}
}

// CheckConflict decides whether candidate may be inserted into (or updated
// within) the room's interval set. The existing set must hold every active
// interval of the room; an entry sharing candidate's non-zero ID is ignored so
// updates do not conflict with themselves.
//
// Force suppresses cross-type conflicts (a booking over an unavailable window,
// an unavailable window over a booking, a booking outside availability) but
// never the structural invariants: same-type overlap and the concurrency cap.
func CheckConflict(maxConcurrent int, existing []Interval, candidate Interval, force bool) ConflictResult {
	switch candidate.Kind {
	case KindAvailable, KindUnavailable:
		for _, e := range existing {
			if sameRecord(e, candidate) || !e.Overlaps(candidate) {
				continue
			}
			if e.Kind == candidate.Kind {
				return ConflictResult{Reason: ReasonSameTypeOverlap}
			}
			if candidate.Kind == KindUnavailable && e.Kind == KindAppointment && !force {
				return ConflictResult{Reason: ReasonConflictingBooking}
			}
		}
		return noConflict()

	case KindAppointment:
		if !force {
			for _, e := range existing {
				if sameRecord(e, candidate) {
					continue
				}
				if e.Kind == KindUnavailable && e.Overlaps(candidate) {
					return ConflictResult{Reason: ReasonInsideUnavailable}
				}
			}
			if !coveredByAvailable(existing, candidate.Start, candidate.End) {
				return ConflictResult{Reason: ReasonOutsideAvailable}
			}
		}
		if peakConcurrency(existing, candidate)+1 > maxConcurrent {
			return ConflictResult{Reason: ReasonTooManyConcurrent}
		}
		return noConflict()
	}

	return noConflict()
}

func sameRecord(e, candidate Interval) bool {
	return candidate.ID != 0 && e.ID == candidate.ID
}

// coveredByAvailable reports whether [start, end) lies fully inside the union
// of the room's available windows.
func coveredByAvailable(existing []Interval, start, end time.Time) bool {
	var windows []Interval
	for _, e := range existing {
		if e.Kind == KindAvailable && e.OverlapsRange(start, end) {
			windows = append(windows, e)
		}
	}
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})

	cursor := start
	for _, w := range windows {
		if w.Start.After(cursor) {
			return false
		}
		if w.End.After(cursor) {
			cursor = w.End
		}
		if !cursor.Before(end) {
			return true
		}
	}
	return !cursor.Before(end)
}

// peakConcurrency returns the largest number of existing bookings active at
// any single instant within candidate's range.
func peakConcurrency(existing []Interval, candidate Interval) int {
	var overlapping []Interval
	for _, e := range existing {
		if e.Kind == KindAppointment && !sameRecord(e, candidate) && e.Overlaps(candidate) {
			overlapping = append(overlapping, e)
		}
	}
	if len(overlapping) == 0 {
		return 0
	}

	// The count can only rise at an interval start, so probing every start
	// instant (clamped into candidate's range) finds the peak.
	points := []time.Time{candidate.Start}
	for _, o := range overlapping {
		if o.Start.After(candidate.Start) {
			points = append(points, o.Start)
		}
	}

	peak := 0
	for _, p := range points {
		active := 0
		for _, o := range overlapping {
			if !o.Start.After(p) && o.End.After(p) {
				active++
			}
		}
		if active > peak {
			peak = active
		}
	}
	return peak
}
