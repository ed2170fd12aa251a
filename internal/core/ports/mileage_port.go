package ports

import (
	"context"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
)

type MileageService interface {
	RecordMileage(ctx context.Context, vehicleID uuid.UUID, mileage int) (*domain.MileageEntry, error)
	// CurrentMileage returns nil when the vehicle has no mileage history.
	CurrentMileage(ctx context.Context, vehicleID uuid.UUID) (*int, error)
	GetMileageHistory(ctx context.Context, vehicleID uuid.UUID, limit int) ([]*domain.MileageEntry, error)
}

type MileageRepository interface {
	AppendMileage(ctx context.Context, entry *domain.MileageEntry) (*domain.MileageEntry, error)
	// LatestMileage returns nil without error when the vehicle has no
	// accepted entries yet.
	LatestMileage(ctx context.Context, vehicleID uuid.UUID) (*domain.MileageEntry, error)
	GetMileageByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit int) ([]*domain.MileageEntry, error)
}
