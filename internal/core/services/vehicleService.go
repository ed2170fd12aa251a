package services

import (
	"context"
	"fmt"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type VehicleService struct {
	vehicleRepo   ports.VehicleRepository
	equipmentRepo ports.EquipmentRepository
	logger        ports.LoggerPort
	validate      *validator.Validate
	now           func() time.Time
}

func NewVehicleService(
	vehicleRepo ports.VehicleRepository,
	equipmentRepo ports.EquipmentRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *VehicleService {
	return &VehicleService{
		vehicleRepo:   vehicleRepo,
		equipmentRepo: equipmentRepo,
		logger:        logger,
		validate:      validate,
		now:           time.Now,
	}
}

func (s *VehicleService) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if err := s.validate.Struct(vehicle); err != nil {
		s.logger.Error("Vehicle validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}

	created, err := s.vehicleRepo.CreateVehicle(ctx, vehicle)
	if err != nil {
		s.logger.Error("Failed to create vehicle", map[string]interface{}{
			"error":   err.Error(),
			"user_id": vehicle.UserID.String(),
		})
		return nil, err
	}

	s.logger.Info("Vehicle created successfully", map[string]interface{}{
		"vehicle_id": created.ID.String(),
		"user_id":    created.UserID.String(),
	})

	return created, nil
}

func (s *VehicleService) GetVehicleByID(ctx context.Context, vehicleID string) (*domain.Vehicle, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	return s.vehicleRepo.GetVehicleByID(ctx, id)
}

func (s *VehicleService) GetVehiclesByUserID(ctx context.Context, userID string) ([]*domain.Vehicle, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}
	vehicles, err := s.vehicleRepo.GetVehiclesByUserID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get vehicles", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	return vehicles, nil
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	updated, err := s.vehicleRepo.UpdateVehicle(ctx, vehicle)
	if err != nil {
		s.logger.Error("Failed to update vehicle", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicle.ID.String(),
		})
		return nil, err
	}

	s.logger.Info("Vehicle updated successfully", map[string]interface{}{
		"vehicle_id": vehicle.ID.String(),
	})
	return updated, nil
}

func (s *VehicleService) DeleteVehicle(ctx context.Context, vehicleID string) error {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return fmt.Errorf("invalid vehicle ID: %w", err)
	}

	if err := s.vehicleRepo.DeleteVehicle(ctx, id); err != nil {
		s.logger.Error("Failed to delete vehicle", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		return err
	}

	s.logger.Info("Vehicle deleted successfully", map[string]interface{}{
		"vehicle_id": vehicleID,
	})
	return nil
}

func (s *VehicleService) AddEquipment(ctx context.Context, equipment *domain.Equipment) (*domain.Equipment, error) {
	if err := s.validate.Struct(equipment); err != nil {
		s.logger.Error("Equipment validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	if _, err := s.vehicleRepo.GetVehicleByID(ctx, equipment.VehicleID); err != nil {
		return nil, err
	}

	if equipment.ID == uuid.Nil {
		equipment.ID = uuid.New()
	}
	if equipment.InstalledAt.IsZero() {
		equipment.InstalledAt = s.now()
	}

	created, err := s.equipmentRepo.CreateEquipment(ctx, equipment)
	if err != nil {
		s.logger.Error("Failed to create equipment", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": equipment.VehicleID.String(),
		})
		return nil, err
	}

	s.logger.Info("Equipment added successfully", map[string]interface{}{
		"equipment_id": created.ID.String(),
		"vehicle_id":   created.VehicleID.String(),
		"name":         created.Name,
	})

	return created, nil
}

func (s *VehicleService) GetEquipmentByVehicleID(ctx context.Context, vehicleID string) ([]*domain.Equipment, error) {
	id, err := uuid.Parse(vehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle ID: %w", err)
	}
	equipment, err := s.equipmentRepo.GetEquipmentByVehicleID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get equipment", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		return nil, err
	}
	return equipment, nil
}

func (s *VehicleService) RemoveEquipment(ctx context.Context, equipmentID string) error {
	id, err := uuid.Parse(equipmentID)
	if err != nil {
		return fmt.Errorf("invalid equipment ID: %w", err)
	}

	if err := s.equipmentRepo.DeleteEquipment(ctx, id); err != nil {
		s.logger.Error("Failed to delete equipment", map[string]interface{}{
			"error":        err.Error(),
			"equipment_id": equipmentID,
		})
		return err
	}

	s.logger.Info("Equipment removed successfully", map[string]interface{}{
		"equipment_id": equipmentID,
	})
	return nil
}
