package actions

import (
	"context"
	"errors"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/variables"
)

// Session variables consumed by bookings.
const (
	appointmentTimeVariable  = "appointment_time"
	appointmentNotesVariable = "appointment_notes"
)

// CreateBooking books an appointment on the given calendar for the session's
// contact, taking the requested slot from the appointment_time variable.
func (e *Executor) CreateBooking(ctx context.Context, vars *variables.Store, calendarID string) (*ports.Booking, error) {
	if calendarID == "" {
		return nil, errors.New("no calendar configured")
	}

	req := ports.BookingRequest{CalendarID: vars.Interpolate(calendarID)}
	if raw, ok := vars.Get(contactIDVariable); ok {
		req.ContactID = variables.Stringify(raw)
	}
	if raw, ok := vars.Get(appointmentTimeVariable); ok {
		req.StartTime = variables.Stringify(raw)
	}
	if raw, ok := vars.Get(appointmentNotesVariable); ok {
		req.Notes = variables.Stringify(raw)
	}

	booking, err := e.crm.CreateBooking(ctx, req)
	if err != nil {
		e.logger.Warn("booking failed", "calendar", req.CalendarID, "error", err)
		return nil, err
	}
	e.logger.Debug("booking created", "calendar", req.CalendarID, "booking", booking.ID)
	return booking, nil
}
