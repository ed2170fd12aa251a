package domain

import (
	"time"

	"github.com/google/uuid"
)

// Equipment is one piece of gear attached to a vehicle, either picked
// from the shared library or entered by the owner.
type Equipment struct {
	ID          uuid.UUID `json:"id"`
	VehicleID   uuid.UUID `json:"vehicle_id" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Category    string    `json:"category,omitempty" validate:"max=100"`
	Brand       string    `json:"brand,omitempty" validate:"max=100"`
	Model       string    `json:"model,omitempty" validate:"max=100"`
	InstalledAt time.Time `json:"installed_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
