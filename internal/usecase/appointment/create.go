package appointment

import (
	"context"
	"time"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/messaging"
	uc "github.com/hochlab/lab-booking/internal/usecase/timeslot"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	RoomID uint
	UserID uint

	Start time.Time
	End   time.Time

	// Single appointments carry RecurrenceSingle and amount 1; anything else
	// books a whole series.
	Recurrence domain.Recurrence
	Amount     int

	// Force is restricted to admins by the handler.
	Force bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo   domain.Repository
	single *uc.CreateTimeslot
	series *uc.CreateTimeslotSeries
	events *messaging.Dispatcher
}

func NewCreateAppointment(
	repo domain.Repository,
	single *uc.CreateTimeslot,
	series *uc.CreateTimeslotSeries,
	events *messaging.Dispatcher,
) *CreateAppointment {
	return &CreateAppointment{
		repo:   repo,
		single: single,
		series: series,
		events: events,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (a *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) ([]domain.Interval, error) {

	room, err := a.repo.GetRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}

	status := domain.StatusPending
	if room.AutoAcceptBookings {
		status = domain.StatusAccepted
	}

	var created []domain.Interval
	if in.Recurrence == domain.RecurrenceSingle || in.Recurrence == "" {
		iv, err := a.single.Execute(ctx, uc.CreateTimeslotInput{
			RoomID:             in.RoomID,
			Kind:               domain.KindAppointment,
			Start:              in.Start,
			End:                in.End,
			Force:              in.Force,
			UserID:             &in.UserID,
			ConfirmationStatus: status,
		})
		if err != nil {
			return nil, err
		}
		created = []domain.Interval{iv}
	} else {
		created, err = a.series.Execute(ctx, uc.CreateTimeslotSeriesInput{
			RoomID:             in.RoomID,
			Kind:               domain.KindAppointment,
			Start:              in.Start,
			End:                in.End,
			Recurrence:         in.Recurrence,
			Amount:             in.Amount,
			Force:              in.Force,
			UserID:             &in.UserID,
			ConfirmationStatus: status,
		})
		if err != nil {
			return nil, err
		}
	}

	action := messaging.ActionAppointmentRequested
	title := "Appointment requested"
	content := "Your booking for room " + room.Name + " is waiting for confirmation."
	if status == domain.StatusAccepted {
		action = messaging.ActionAppointmentAccepted
		title = "Appointment confirmed"
		content = "Your booking for room " + room.Name + " was accepted automatically."
	}
	entityID := created[0].ID
	a.events.Dispatch(messaging.Event{
		UserID:   &in.UserID,
		Action:   action,
		Title:    title,
		Content:  content,
		Entity:   "timeslot",
		EntityID: &entityID,
	})

	return created, nil
}
