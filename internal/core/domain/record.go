package domain

import (
	"time"

	"github.com/google/uuid"
)

// CompletionEvent is the payload supplied when a user marks a
// maintenance occurrence done.
type CompletionEvent struct {
	CompletedAt         time.Time `json:"completed_at" validate:"required"`
	MileageAtCompletion *int      `json:"mileage_at_completion,omitempty" validate:"omitempty,min=0"`
	Cost                float64   `json:"cost,omitempty" validate:"min=0"`
	Location            string    `json:"location,omitempty" validate:"max=200"`
	Notes               string    `json:"notes,omitempty"`
	Attachments         []string  `json:"attachments,omitempty"`
}

// MaintenanceRecord is one entry of a schedule's completion history.
// Append-only: never updated, only cascade-deleted with its schedule.
type MaintenanceRecord struct {
	ID                  uuid.UUID `json:"id"`
	ScheduleID          uuid.UUID `json:"schedule_id"`
	CompletedAt         time.Time `json:"completed_at"`
	MileageAtCompletion *int      `json:"mileage_at_completion,omitempty"`
	Cost                float64   `json:"cost,omitempty"`
	Location            string    `json:"location,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	Attachments         []string  `json:"attachments,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
