package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRecurrence rejects a rule with neither a time nor a
	// distance trigger at creation time.
	ErrInvalidRecurrence = errors.New("recurrence rule needs at least one trigger")

	// ErrFutureCompletionDate rejects completion events dated after "now".
	ErrFutureCompletionDate = errors.New("completion date is in the future")

	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrVehicleNotFound   = errors.New("vehicle not found")
	ErrEquipmentNotFound = errors.New("equipment not found")

	// ErrTemplateInUse guards a template still referenced by schedules.
	ErrTemplateInUse = errors.New("template is referenced by existing schedules")
)

// RateLimitedError is returned when a mileage update lands inside the
// cooldown window. NextUpdateAvailable is surfaced verbatim to the caller.
type RateLimitedError struct {
	VehicleID           string
	NextUpdateAvailable time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("mileage update rate limited until %s", e.NextUpdateAvailable.Format(time.RFC3339))
}
