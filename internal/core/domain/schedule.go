package domain

import (
	"time"

	"github.com/google/uuid"
)

type SourceKind string

const (
	SourceLibrary SourceKind = "library"
	SourceCustom  SourceKind = "custom"
)

// ScheduleSource is a tagged union: a schedule either references a
// library template or inlines its own maintenance data. Consumers switch
// on Kind instead of null-checking both branches.
type ScheduleSource struct {
	Kind       SourceKind       `json:"kind"`
	TemplateID *uuid.UUID       `json:"template_id,omitempty"`
	Custom     *MaintenanceData `json:"custom,omitempty"`
}

func LibrarySource(templateID uuid.UUID) ScheduleSource {
	return ScheduleSource{Kind: SourceLibrary, TemplateID: &templateID}
}

func CustomSource(data MaintenanceData) ScheduleSource {
	return ScheduleSource{Kind: SourceCustom, Custom: &data}
}

// MaintenanceSchedule tracks one recurring maintenance for one vehicle
// equipment instance. It stores only the reference point; next-due
// values are always derived via Project, never persisted.
type MaintenanceSchedule struct {
	ID                   uuid.UUID      `json:"id"`
	VehicleID            uuid.UUID      `json:"vehicle_id" validate:"required"`
	EquipmentID          uuid.UUID      `json:"equipment_id" validate:"required"`
	Source               ScheduleSource `json:"source"`
	CreatedAt            time.Time      `json:"created_at"`
	CreatedMileage       int            `json:"created_mileage" validate:"min=0"`
	LastCompletedAt      *time.Time     `json:"last_completed_at,omitempty"`
	LastCompletedMileage *int           `json:"last_completed_mileage,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// ReferencePoint resolves the authoritative projection origin: the last
// completion if one exists, otherwise the creation point. A completion
// recorded without a mileage falls back to the vehicle's current mileage
// when known, then to the creation mileage (a time-only rule may never
// receive one).
func (s *MaintenanceSchedule) ReferencePoint(currentMileage *int) ReferencePoint {
	if s.LastCompletedAt == nil {
		return ReferencePoint{Date: s.CreatedAt, Mileage: s.CreatedMileage}
	}
	mileage := s.CreatedMileage
	if s.LastCompletedMileage != nil {
		mileage = *s.LastCompletedMileage
	} else if currentMileage != nil {
		mileage = *currentMileage
	}
	return ReferencePoint{Date: *s.LastCompletedAt, Mileage: mileage}
}

// ScoredSchedule pairs a schedule with its resolved maintenance data and
// the urgency derived at read time.
type ScoredSchedule struct {
	Schedule    *MaintenanceSchedule `json:"schedule"`
	Maintenance MaintenanceData      `json:"maintenance"`
	Projection  Projection           `json:"projection"`
	Assessment  Assessment           `json:"assessment"`
}
