package appointment

import (
	"context"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	uc "github.com/hochlab/lab-booking/internal/usecase/timeslot"
)

// ======================================================
// USE CASE
// ======================================================

type DeleteAppointment struct {
	repo   domain.Repository
	remove *uc.DeleteTimeslot
}

func NewDeleteAppointment(
	repo domain.Repository,
	remove *uc.DeleteTimeslot,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo:   repo,
		remove: remove,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute deletes a booking. Users may only remove their own; admins any.
func (a *DeleteAppointment) Execute(
	ctx context.Context,
	roomID uint,
	id uint,
	requesterID uint,
	isAdmin bool,
) error {

	current, err := a.repo.GetInterval(ctx, roomID, id)
	if err != nil {
		return err
	}
	if current.Kind != domain.KindAppointment {
		return httperr.ErrBusiness("timeslot_not_found")
	}
	if !isAdmin && (current.UserID == nil || *current.UserID != requesterID) {
		return httperr.ErrBusiness("not_owner")
	}

	return a.remove.Execute(ctx, roomID, id, true)
}
