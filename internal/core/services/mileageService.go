package services

import (
	"context"
	"fmt"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/google/uuid"
)

// MileageService is the append-only mileage ledger. An update is
// accepted only when no prior accepted entry for the vehicle falls
// inside the cooldown window; the check and the append run under the
// vehicle's lock so two racing requests cannot both pass the check.
type MileageService struct {
	mileageRepo ports.MileageRepository
	locks       *VehicleLocks
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
	now         func() time.Time
}

func NewMileageService(
	mileageRepo ports.MileageRepository,
	locks *VehicleLocks,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *MileageService {
	return &MileageService{
		mileageRepo: mileageRepo,
		locks:       locks,
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
	}
}

func (s *MileageService) RecordMileage(ctx context.Context, vehicleID uuid.UUID, mileage int) (*domain.MileageEntry, error) {
	if mileage < 0 {
		return nil, fmt.Errorf("mileage must not be negative")
	}

	unlock := s.locks.Lock(vehicleID)
	defer unlock()

	now := s.now()

	latest, err := s.mileageRepo.LatestMileage(ctx, vehicleID)
	if err != nil {
		s.logger.Error("Failed to read latest mileage", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID.String(),
		})
		return nil, err
	}

	if latest != nil {
		if next := latest.RecordedAt.Add(domain.MileageCooldown); now.Before(next) {
			s.metrics.MileageRateLimited()
			s.logger.Info("Mileage update rejected by cooldown", map[string]interface{}{
				"vehicle_id":            vehicleID.String(),
				"next_update_available": next,
			})
			return nil, &domain.RateLimitedError{
				VehicleID:           vehicleID.String(),
				NextUpdateAvailable: next,
			}
		}
	}

	entry := &domain.MileageEntry{
		ID:         uuid.New(),
		VehicleID:  vehicleID,
		Mileage:    mileage,
		RecordedAt: now,
	}

	created, err := s.mileageRepo.AppendMileage(ctx, entry)
	if err != nil {
		s.logger.Error("Failed to append mileage entry", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID.String(),
		})
		return nil, err
	}

	s.metrics.MileageAccepted()
	s.logger.Info("Mileage recorded successfully", map[string]interface{}{
		"vehicle_id": vehicleID.String(),
		"mileage":    mileage,
	})

	return created, nil
}

func (s *MileageService) CurrentMileage(ctx context.Context, vehicleID uuid.UUID) (*int, error) {
	latest, err := s.mileageRepo.LatestMileage(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}
	mileage := latest.Mileage
	return &mileage, nil
}

func (s *MileageService) GetMileageHistory(ctx context.Context, vehicleID uuid.UUID, limit int) ([]*domain.MileageEntry, error) {
	entries, err := s.mileageRepo.GetMileageByVehicleID(ctx, vehicleID, limit)
	if err != nil {
		s.logger.Error("Failed to get mileage history", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID.String(),
		})
		return nil, err
	}
	return entries, nil
}
