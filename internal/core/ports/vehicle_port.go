package ports

import (
	"context"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
)

type VehicleRepository interface {
	CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	GetVehicleByID(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error)
	GetVehiclesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error
}

type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, equipment *domain.Equipment) (*domain.Equipment, error)
	GetEquipmentByID(ctx context.Context, equipmentID uuid.UUID) (*domain.Equipment, error)
	GetEquipmentByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*domain.Equipment, error)
	DeleteEquipment(ctx context.Context, equipmentID uuid.UUID) error
}
