package handlers

import (
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	domain "github.com/hochlab/lab-booking/internal/domain/timeslot"
	"github.com/hochlab/lab-booking/internal/httperr"
)

// businessStatus routes a usecase error code to the matching HTTP layer.
var notFoundCodes = map[string]string{
	"room_not_found":     "Room not found.",
	"timeslot_not_found": "Timeslot not found.",
	"series_not_found":   "Series not found.",
}

var badRequestCodes = map[string]string{
	"invalid_duration":      "Duration must be at least 1h.",
	"series_too_small":      "Series needs to have at least 2 appointments.",
	"series_not_recurring":  "Series can only be recurring.",
	"illegal_recurrence":    "Illegal recurrence.",
	"invalid_status":        "Invalid confirmation status.",
	"series_fully_detached": "Series has no members left to edit.",
}

// writeUsecaseError translates domain and business errors into the response
// contract: conflicts keep the resolver's reason code, known business codes
// map to 400/403/404, anything else is a logged 500.
func writeUsecaseError(c *gin.Context, err error) {
	if ce, ok := httperr.AsConflict(err); ok {
		httperr.Conflict(c, ce.Code, ce.Message)
		return
	}

	var be httperr.BusinessError
	if errors.As(err, &be) {
		if msg, ok := notFoundCodes[be.Code]; ok {
			httperr.NotFound(c, be.Code, msg)
			return
		}
		if msg, ok := badRequestCodes[be.Code]; ok {
			httperr.BadRequest(c, be.Code, msg)
			return
		}
		if be.Code == "not_owner" {
			httperr.Forbidden(c, be.Code, "You can only manage your own appointments.")
			return
		}
		httperr.BadRequest(c, be.Code, "Request rejected.")
		return
	}

	if errors.Is(err, domain.ErrCalendarIntegrity) {
		httperr.Internal(c, "calendar_integrity", "Calendar rendering failed.")
		return
	}

	log.Println("unhandled usecase error:", err)
	httperr.Internal(c, "internal_error", "Internal error.")
}
