package timeslot

import (
	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/messaging"
)

// batchBuilder accumulates the mutations of one engine operation against an
// in-memory working copy of the room's interval set. Placing an interval runs
// the merge engine and folds the plan into the pending batch, so a whole
// series lands in one atomic mutation.
type batchBuilder struct {
	working []domain.Interval
	deletes map[uint]struct{}
	updates map[uint]domain.Interval
}

func newBatchBuilder(existing []domain.Interval) *batchBuilder {
	working := make([]domain.Interval, len(existing))
	copy(working, existing)
	return &batchBuilder{
		working: working,
		deletes: make(map[uint]struct{}),
		updates: make(map[uint]domain.Interval),
	}
}

// snapshot is the current working set, for conflict checks against the state
// the batch would produce.
func (b *batchBuilder) snapshot() []domain.Interval {
	return b.working
}

// remove drops an interval from the working set without scheduling a delete;
// used to take a record's stale version out of play before placing its
// replacement.
func (b *batchBuilder) remove(iv domain.Interval) {
	b.working = without(b.working, iv)
}

// place merges cand into the working set and records the resulting
// creates/updates/deletes.
func (b *batchBuilder) place(cand domain.Interval) domain.Interval {
	plan := domain.PlanMerge(b.working, cand)

	for _, a := range plan.Absorbed {
		b.working = without(b.working, a)
		if a.ID != 0 {
			b.deletes[a.ID] = struct{}{}
			delete(b.updates, a.ID)
		}
	}

	if plan.Result.ID != 0 {
		b.updates[plan.Result.ID] = plan.Result
	}
	b.working = append(b.working, plan.Result)
	return plan.Result
}

// delete schedules a persisted interval for removal.
func (b *batchBuilder) delete(iv domain.Interval) {
	b.working = without(b.working, iv)
	if iv.ID != 0 {
		b.deletes[iv.ID] = struct{}{}
		delete(b.updates, iv.ID)
	}
}

func (b *batchBuilder) build() domain.Batch {
	var batch domain.Batch
	for _, iv := range b.working {
		if iv.ID == 0 {
			batch.Create = append(batch.Create, iv)
		}
	}
	for _, iv := range b.updates {
		batch.Update = append(batch.Update, iv)
	}
	for id := range b.deletes {
		batch.Delete = append(batch.Delete, id)
	}
	return batch
}

func without(list []domain.Interval, target domain.Interval) []domain.Interval {
	out := make([]domain.Interval, 0, len(list))
	for _, iv := range list {
		if iv.ID == target.ID && iv.Start.Equal(target.Start) && iv.End.Equal(target.End) && iv.Kind == target.Kind {
			continue
		}
		out = append(out, iv)
	}
	return out
}

func findByID(list []domain.Interval, id uint) (domain.Interval, bool) {
	for _, iv := range list {
		if iv.ID == id {
			return iv, true
		}
	}
	return domain.Interval{}, false
}

func membersOf(list []domain.Interval, seriesID string) []domain.Interval {
	var out []domain.Interval
	for _, iv := range list {
		if iv.SeriesID != nil && *iv.SeriesID == seriesID {
			out = append(out, iv)
		}
	}
	return out
}

// notifyOverridden tells every owner whose booking a forced unavailable
// window now overlaps. The bookings themselves stay on the calendar.
func notifyOverridden(events *messaging.Dispatcher, existing []domain.Interval, window domain.Interval, roomName string) {
	for _, e := range existing {
		if e.Kind != domain.KindAppointment || e.UserID == nil || !e.Overlaps(window) {
			continue
		}
		id := e.ID
		events.Dispatch(messaging.Event{
			UserID:   e.UserID,
			Action:   messaging.ActionAppointmentOverridden,
			Title:    "Room unavailability overlaps your appointment",
			Content:  "Room " + roomName + " was marked unavailable during your appointment.",
			Entity:   "timeslot",
			EntityID: &id,
		})
	}
}
