package timeslot

import (
	"context"

	"github.com/hochlab/lab-booking/internal/models"
)

// Batch is one atomic set of interval mutations. The store applies all three
// groups in a single transaction so a merge is never visible without its
// triggering create/update.
type Batch struct {
	Create []Interval
	Update []Interval
	Delete []uint
}

func (b Batch) Empty() bool {
	return len(b.Create) == 0 && len(b.Update) == 0 && len(b.Delete) == 0
}

type Repository interface {
	// -------- Room --------
	GetRoom(
		ctx context.Context,
		roomID uint,
	) (*models.Room, error)

	// -------- Intervals (read) --------
	ListIntervals(
		ctx context.Context,
		roomID uint,
	) ([]Interval, error)

	GetInterval(
		ctx context.Context,
		roomID uint,
		id uint,
	) (Interval, error)

	ListSeries(
		ctx context.Context,
		roomID uint,
		seriesID string,
	) ([]Interval, error)

	// -------- Intervals (write) --------

	// Mutate runs one engine operation inside a transaction: fn receives the
	// room and its interval set, both read under row locks so concurrent
	// mutations on the same room serialize across replicas, and returns the
	// batch to apply. Intervals created by the batch are returned.
	Mutate(
		ctx context.Context,
		roomID uint,
		fn func(room *models.Room, existing []Interval) (Batch, error),
	) ([]Interval, error)
}
