package appointment

import (
	"context"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
	"github.com/hochlab/lab-booking/internal/messaging"
	uc "github.com/hochlab/lab-booking/internal/usecase/timeslot"
)

// ======================================================
// USE CASE
// ======================================================

type SetAppointmentStatus struct {
	repo   domain.Repository
	update *uc.UpdateTimeslot
	events *messaging.Dispatcher
}

func NewSetAppointmentStatus(
	repo domain.Repository,
	update *uc.UpdateTimeslot,
	events *messaging.Dispatcher,
) *SetAppointmentStatus {
	return &SetAppointmentStatus{
		repo:   repo,
		update: update,
		events: events,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (a *SetAppointmentStatus) Execute(
	ctx context.Context,
	roomID uint,
	id uint,
	status domain.ConfirmationStatus,
) (domain.Interval, error) {

	if !domain.ValidConfirmationStatus(status) {
		return domain.Interval{}, httperr.ErrBusiness("invalid_status")
	}

	current, err := a.repo.GetInterval(ctx, roomID, id)
	if err != nil {
		return domain.Interval{}, err
	}
	if current.Kind != domain.KindAppointment {
		return domain.Interval{}, httperr.ErrBusiness("timeslot_not_found")
	}

	updated, err := a.update.Execute(ctx, uc.UpdateTimeslotInput{
		RoomID:             roomID,
		ID:                 id,
		ConfirmationStatus: &status,
	})
	if err != nil {
		return domain.Interval{}, err
	}

	if updated.UserID != nil {
		action := messaging.ActionAppointmentAccepted
		title := "Appointment confirmed"
		if status == domain.StatusDenied {
			action = messaging.ActionAppointmentDenied
			title = "Appointment denied"
		}
		entityID := updated.ID
		a.events.Dispatch(messaging.Event{
			UserID:   updated.UserID,
			Action:   action,
			Title:    title,
			Entity:   "timeslot",
			EntityID: &entityID,
		})
	}

	return updated, nil
}
