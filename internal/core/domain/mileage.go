package domain

import (
	"time"

	"github.com/google/uuid"
)

// MileageCooldown is the minimum interval between two accepted mileage
// updates for the same vehicle.
const MileageCooldown = 2 * time.Hour

// MileageEntry is one self-reported odometer reading. Entries are
// append-only; a lower reading than the previous one is still recorded
// and becomes the current mileage, the cooldown is the real protection.
type MileageEntry struct {
	ID         uuid.UUID `json:"id"`
	VehicleID  uuid.UUID `json:"vehicle_id" validate:"required"`
	Mileage    int       `json:"mileage" validate:"min=0"`
	RecordedAt time.Time `json:"recorded_at"`
}
