package domain

import (
	"time"

	"github.com/google/uuid"
)

type VehicleType string

const (
	Car        VehicleType = "car"
	Motorcycle VehicleType = "motorcycle"
	Van        VehicleType = "van"
	Truck      VehicleType = "truck"
)

type Vehicle struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id" validate:"required"`
	Name      string      `json:"name" validate:"required,max=200"`
	Type      VehicleType `json:"type" validate:"required,oneof=car motorcycle van truck"`
	Make      string      `json:"make,omitempty" validate:"max=100"`
	Model     string      `json:"model,omitempty" validate:"max=100"`
	Year      int         `json:"year,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
