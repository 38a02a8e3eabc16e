package timeslot

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ===============================
// Calendar Renderer
// ===============================

const (
	// CellUnavailable marks an hour with no bookable capacity.
	CellUnavailable = "unavailable"
	// CellBlocked marks a concurrency slot consumed by a booking that
	// started in an earlier row and still spans this hour.
	CellBlocked = "appointment_blocked"
)

// ErrCalendarIntegrity signals more simultaneous bookings than the room
// permits. The conflict resolver should have prevented that, so rendering
// treats it as a data corruption, not a user error.
var ErrCalendarIntegrity = errors.New("timeslot: concurrent bookings exceed room limit")

// Grid is hour-rows x 7 day-columns x concurrency slots. A slot holds nil,
// CellUnavailable, "available <n>", CellBlocked, or the Interval of the
// booking that starts in that hour.
type Grid [][7][]any

// AvailabilityGrid is the single-layer admin view: hour-rows x 7 day-columns
// of nil, "available <id>" or "unavailable <id>".
type AvailabilityGrid [][7]any

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	t = t.AddDate(0, 0, -(day - 1))
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayColumn maps a timestamp onto its ISO weekday column, Monday 0 .. Sunday 6.
func dayColumn(t time.Time) int {
	day := int(t.Weekday())
	if day <= 0 {
		day = 7
	}
	return day - 1
}

// gridBounds sizes the grid: rows start at the earliest clipped hour of the
// sized intervals and span as many whole hours as the longest one, capped at
// the end of the day.
func gridBounds(intervals []Interval, weekStart, weekEnd time.Time) (minHour, rows int) {
	minHour = 24
	for _, iv := range intervals {
		if !iv.OverlapsRange(weekStart, weekEnd) {
			continue
		}
		start := iv.Start
		if start.Before(weekStart) {
			start = weekStart
		}
		if h := start.Hour(); h < minHour {
			minHour = h
		}
		span := int(iv.Duration() / time.Hour)
		if iv.Duration()%time.Hour != 0 {
			span++
		}
		if span > rows {
			rows = span
		}
	}
	if minHour == 24 {
		return 0, 0
	}
	if minHour+rows > 24 {
		rows = 24 - minHour
	}
	return minHour, rows
}

// RenderCalendar projects the room's intervals for the week containing weekOf
// onto the booking grid and returns it with the earliest hour carrying any
// availability.
func RenderCalendar(maxConcurrent int, intervals []Interval, weekOf time.Time) (Grid, int, error) {
	weekStart := StartOfWeek(weekOf)
	weekEnd := weekStart.AddDate(0, 0, 7)
	loc := weekStart.Location()

	var sizing []Interval
	for _, iv := range intervals {
		if iv.Kind == KindAvailable {
			sizing = append(sizing, iv)
		}
	}
	minHour, rows := gridBounds(sizing, weekStart, weekEnd)

	grid := make(Grid, rows)
	for r := range grid {
		for d := 0; d < 7; d++ {
			grid[r][d] = make([]any, maxConcurrent)
		}
	}

	cellAt := func(t time.Time) (row, day int, ok bool) {
		row = t.Hour() - minHour
		return row, dayColumn(t), row >= 0 && row < rows
	}

	// Lay bookings left-to-right into concurrency lanes. Sorting by start
	// and reusing the first lane that has run out keeps a booking in one
	// lane for every hour it spans.
	var bookings []Interval
	for _, iv := range intervals {
		if iv.Kind == KindAppointment && iv.OverlapsRange(weekStart, weekEnd) {
			bookings = append(bookings, iv)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Start.Equal(bookings[j].Start) {
			return bookings[i].ID < bookings[j].ID
		}
		return bookings[i].Start.Before(bookings[j].Start)
	})

	laneEnds := make([]time.Time, 0, maxConcurrent)
	for _, b := range bookings {
		lane := -1
		for i := range laneEnds {
			if !laneEnds[i].After(b.Start) {
				lane = i
				break
			}
		}
		if lane == -1 {
			if len(laneEnds) >= maxConcurrent {
				return nil, 0, fmt.Errorf("%w: booking %d in room %d", ErrCalendarIntegrity, b.ID, b.RoomID)
			}
			laneEnds = append(laneEnds, time.Time{})
			lane = len(laneEnds) - 1
		}
		laneEnds[lane] = b.End

		from := b.Start
		if from.Before(weekStart) {
			from = weekStart
		}
		to := b.End
		if to.After(weekEnd) {
			to = weekEnd
		}
		first := true
		for cell := hourFloor(from, loc); cell.Before(to); cell = cell.Add(time.Hour) {
			row, day, ok := cellAt(cell)
			if ok {
				if first && !b.Start.Before(weekStart) {
					grid[row][day][lane] = b
				} else {
					grid[row][day][lane] = CellBlocked
				}
			}
			first = false
		}
	}

	// Fill the remaining slots from the availability layers.
	for r := 0; r < rows; r++ {
		for d := 0; d < 7; d++ {
			cellStart := weekStart.AddDate(0, 0, d).Add(time.Duration(minHour+r) * time.Hour)
			cellEnd := cellStart.Add(time.Hour)

			occupied := 0
			for _, slot := range grid[r][d] {
				if slot != nil {
					occupied++
				}
			}
			remaining := maxConcurrent - occupied

			var fill any
			switch {
			case covers(intervals, KindUnavailable, cellStart, cellEnd):
				fill = CellUnavailable
			case covers(intervals, KindAvailable, cellStart, cellEnd):
				fill = fmt.Sprintf("available %d", remaining)
			}

			for s := range grid[r][d] {
				if grid[r][d][s] == nil {
					grid[r][d][s] = fill
				}
			}
		}
	}

	return grid, minHour, nil
}

// RenderAvailabilityCalendar projects only the available/unavailable layers,
// one value per hour cell, for the admin editing view. Unavailable blocks win
// over the available window they carve out of.
func RenderAvailabilityCalendar(intervals []Interval, weekOf time.Time) (AvailabilityGrid, int) {
	weekStart := StartOfWeek(weekOf)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var sizing []Interval
	for _, iv := range intervals {
		if iv.Kind == KindAvailable || iv.Kind == KindUnavailable {
			sizing = append(sizing, iv)
		}
	}
	minHour, rows := gridBounds(sizing, weekStart, weekEnd)

	grid := make(AvailabilityGrid, rows)
	for r := 0; r < rows; r++ {
		for d := 0; d < 7; d++ {
			cellStart := weekStart.AddDate(0, 0, d).Add(time.Duration(minHour+r) * time.Hour)
			cellEnd := cellStart.Add(time.Hour)

			if iv, ok := covering(intervals, KindUnavailable, cellStart, cellEnd); ok {
				grid[r][d] = fmt.Sprintf("unavailable %d", iv.ID)
			} else if iv, ok := covering(intervals, KindAvailable, cellStart, cellEnd); ok {
				grid[r][d] = fmt.Sprintf("available %d", iv.ID)
			}
		}
	}
	return grid, minHour
}

func hourFloor(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
}

func covers(intervals []Interval, kind Kind, start, end time.Time) bool {
	_, ok := covering(intervals, kind, start, end)
	return ok
}

func covering(intervals []Interval, kind Kind, start, end time.Time) (Interval, bool) {
	for _, iv := range intervals {
		if iv.Kind == kind && iv.OverlapsRange(start, end) {
			return iv, true
		}
	}
	return Interval{}, false
}
