package messaging

// Event is one notification-worthy fact about a booking or timeslot. The
// dispatcher fans it out to the recipient's inbox and to the message broker;
// what a downstream notifier does with it is not this service's concern.
type Event struct {
	UserID   *uint  `json:"user_id"`
	Action   string `json:"action"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Entity   string `json:"entity"`
	EntityID *uint  `json:"entity_id"`
}

const (
	ActionAppointmentRequested  = "appointment_requested"
	ActionAppointmentAccepted   = "appointment_accepted"
	ActionAppointmentDenied     = "appointment_denied"
	ActionAppointmentDeleted    = "appointment_deleted"
	ActionAppointmentOverridden = "appointment_overridden"
)
