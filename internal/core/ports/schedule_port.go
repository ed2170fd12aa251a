package ports

import (
	"context"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
)

type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule *domain.MaintenanceSchedule) (*domain.MaintenanceSchedule, error)
	GetScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.MaintenanceSchedule, error)
	GetSchedulesByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*domain.MaintenanceSchedule, error)
	// ApplyCompletion persists the completion record and the schedule's
	// new reference point in one transaction: both happen or neither.
	ApplyCompletion(ctx context.Context, schedule *domain.MaintenanceSchedule, record *domain.MaintenanceRecord) error
	DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error
}

type RecordRepository interface {
	GetRecordsByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*domain.MaintenanceRecord, error)
}

type TemplateRepository interface {
	CreateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error)
	GetTemplateByID(ctx context.Context, templateID uuid.UUID) (*domain.MaintenanceTemplate, error)
	ListTemplates(ctx context.Context, category string) ([]*domain.MaintenanceTemplate, error)
	UpdateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error)
	DeleteTemplate(ctx context.Context, templateID uuid.UUID) error
	CountSchedulesByTemplateID(ctx context.Context, templateID uuid.UUID) (int, error)
}
