package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const scheduleCacheTTL = 15 * time.Minute

type ScheduleService struct {
	scheduleRepo  ports.ScheduleRepository
	recordRepo    ports.RecordRepository
	templateRepo  ports.TemplateRepository
	equipmentRepo ports.EquipmentRepository
	mileage       ports.MileageService
	locks         *VehicleLocks
	logger        ports.LoggerPort
	validate      *validator.Validate
	cache         ports.CachePort
	metrics       ports.MetricsPort
	now           func() time.Time
}

func NewScheduleService(
	scheduleRepo ports.ScheduleRepository,
	recordRepo ports.RecordRepository,
	templateRepo ports.TemplateRepository,
	equipmentRepo ports.EquipmentRepository,
	mileage ports.MileageService,
	locks *VehicleLocks,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	metrics ports.MetricsPort,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo:  scheduleRepo,
		recordRepo:    recordRepo,
		templateRepo:  templateRepo,
		equipmentRepo: equipmentRepo,
		mileage:       mileage,
		locks:         locks,
		logger:        logger,
		validate:      validate,
		cache:         cache,
		metrics:       metrics,
		now:           time.Now,
	}
}

func scheduleCacheKey(vehicleID uuid.UUID) string {
	return fmt.Sprintf("schedules:vehicle:%s", vehicleID.String())
}

// CreateSchedule attaches a maintenance to an equipment instance. The
// current date and vehicle mileage become the schedule's creation
// reference point.
func (s *ScheduleService) CreateSchedule(ctx context.Context, schedule *domain.MaintenanceSchedule) (*domain.MaintenanceSchedule, error) {
	if err := s.validate.Struct(schedule); err != nil {
		s.logger.Error("Schedule validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	switch schedule.Source.Kind {
	case domain.SourceLibrary:
		if schedule.Source.TemplateID == nil {
			return nil, fmt.Errorf("library schedule requires a template id")
		}
		if _, err := s.templateRepo.GetTemplateByID(ctx, *schedule.Source.TemplateID); err != nil {
			s.logger.Error("Failed to resolve template", map[string]interface{}{
				"error":       err.Error(),
				"template_id": schedule.Source.TemplateID.String(),
			})
			return nil, err
		}
	case domain.SourceCustom:
		if schedule.Source.Custom == nil {
			return nil, fmt.Errorf("custom schedule requires maintenance data")
		}
		if err := s.validate.Struct(schedule.Source.Custom); err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if err := schedule.Source.Custom.Recurrence.Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown schedule source kind %q", schedule.Source.Kind)
	}

	equipment, err := s.equipmentRepo.GetEquipmentByID(ctx, schedule.EquipmentID)
	if err != nil {
		s.logger.Error("Failed to resolve equipment", map[string]interface{}{
			"error":        err.Error(),
			"equipment_id": schedule.EquipmentID.String(),
		})
		return nil, err
	}
	if equipment.VehicleID != schedule.VehicleID {
		return nil, fmt.Errorf("equipment does not belong to vehicle")
	}

	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	schedule.CreatedAt = s.now()

	current, err := s.mileage.CurrentMileage(ctx, schedule.VehicleID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		schedule.CreatedMileage = *current
	}

	created, err := s.scheduleRepo.CreateSchedule(ctx, schedule)
	if err != nil {
		s.logger.Error("Failed to create schedule", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": schedule.VehicleID.String(),
		})
		return nil, err
	}

	s.invalidateCache(schedule.VehicleID)

	s.logger.Info("Schedule created successfully", map[string]interface{}{
		"schedule_id": created.ID.String(),
		"vehicle_id":  created.VehicleID.String(),
		"source":      string(created.Source.Kind),
	})

	return created, nil
}

func (s *ScheduleService) GetScheduleByID(ctx context.Context, scheduleID string) (*domain.MaintenanceSchedule, error) {
	id, err := uuid.Parse(scheduleID)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule ID: %w", err)
	}
	return s.scheduleRepo.GetScheduleByID(ctx, id)
}

// GetScoredSchedules lists a vehicle's schedules with urgency derived at
// read time and ranked for display. Raw schedule rows may come from the
// cache; scores never do.
func (s *ScheduleService) GetScoredSchedules(ctx context.Context, vehicleID uuid.UUID) ([]*domain.ScoredSchedule, error) {
	schedules, err := s.loadSchedules(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	current, err := s.mileage.CurrentMileage(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	now := domain.Snapshot{Date: s.now(), Mileage: current}

	scored := make([]*domain.ScoredSchedule, 0, len(schedules))
	for _, schedule := range schedules {
		data, err := s.resolveMaintenance(ctx, schedule)
		if err != nil {
			s.logger.Warn("Skipping schedule with unresolvable source", map[string]interface{}{
				"error":       err.Error(),
				"schedule_id": schedule.ID.String(),
			})
			continue
		}
		projection := domain.Project(data.Recurrence, schedule.ReferencePoint(current))
		scored = append(scored, &domain.ScoredSchedule{
			Schedule:    schedule,
			Maintenance: data,
			Projection:  projection,
			Assessment:  domain.Score(projection, now),
		})
	}

	return domain.Rank(scored), nil
}

// Complete records a completion event and resets the schedule's
// reference point. The record append and the schedule update are applied
// in one transaction; a supplied mileage is then offered to the ledger
// under its normal cooldown.
func (s *ScheduleService) Complete(ctx context.Context, scheduleID string, event domain.CompletionEvent) (*domain.MaintenanceSchedule, *domain.MaintenanceRecord, error) {
	id, err := uuid.Parse(scheduleID)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid schedule ID: %w", err)
	}

	if err := s.validate.Struct(&event); err != nil {
		return nil, nil, fmt.Errorf("validation error: %w", err)
	}
	if event.CompletedAt.After(s.now()) {
		return nil, nil, domain.ErrFutureCompletionDate
	}

	schedule, err := s.scheduleRepo.GetScheduleByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get schedule", map[string]interface{}{
			"error":       err.Error(),
			"schedule_id": scheduleID,
		})
		return nil, nil, err
	}

	unlock := s.locks.Lock(schedule.VehicleID)

	completedAt := event.CompletedAt
	schedule.LastCompletedAt = &completedAt
	if event.MileageAtCompletion != nil {
		mileage := *event.MileageAtCompletion
		schedule.LastCompletedMileage = &mileage
	}
	schedule.UpdatedAt = s.now()

	record := &domain.MaintenanceRecord{
		ID:                  uuid.New(),
		ScheduleID:          schedule.ID,
		CompletedAt:         event.CompletedAt,
		MileageAtCompletion: event.MileageAtCompletion,
		Cost:                event.Cost,
		Location:            event.Location,
		Notes:               event.Notes,
		Attachments:         event.Attachments,
		CreatedAt:           s.now(),
	}

	if err := s.scheduleRepo.ApplyCompletion(ctx, schedule, record); err != nil {
		unlock()
		s.logger.Error("Failed to apply completion", map[string]interface{}{
			"error":       err.Error(),
			"schedule_id": scheduleID,
		})
		return nil, nil, err
	}
	unlock()

	s.metrics.CompletionRecorded()
	s.invalidateCache(schedule.VehicleID)

	// Offer the supplied mileage to the ledger as a candidate reading.
	// The ledger's cooldown still applies; a rejection is not an error.
	if event.MileageAtCompletion != nil {
		current, err := s.mileage.CurrentMileage(ctx, schedule.VehicleID)
		if err == nil && (current == nil || *current != *event.MileageAtCompletion) {
			if _, err := s.mileage.RecordMileage(ctx, schedule.VehicleID, *event.MileageAtCompletion); err != nil {
				s.logger.Info("Completion mileage not recorded to ledger", map[string]interface{}{
					"error":       err.Error(),
					"schedule_id": scheduleID,
				})
			}
		}
	}

	s.logger.Info("Completion recorded successfully", map[string]interface{}{
		"schedule_id":  scheduleID,
		"record_id":    record.ID.String(),
		"completed_at": event.CompletedAt,
	})

	return schedule, record, nil
}

func (s *ScheduleService) GetHistory(ctx context.Context, scheduleID string) ([]*domain.MaintenanceRecord, error) {
	id, err := uuid.Parse(scheduleID)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule ID: %w", err)
	}
	records, err := s.recordRepo.GetRecordsByScheduleID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get completion history", map[string]interface{}{
			"error":       err.Error(),
			"schedule_id": scheduleID,
		})
		return nil, err
	}
	return records, nil
}

// DeleteSchedule removes a schedule; its completion history cascades
// with it.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	id, err := uuid.Parse(scheduleID)
	if err != nil {
		return fmt.Errorf("invalid schedule ID: %w", err)
	}

	schedule, err := s.scheduleRepo.GetScheduleByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.scheduleRepo.DeleteSchedule(ctx, id); err != nil {
		s.logger.Error("Failed to delete schedule", map[string]interface{}{
			"error":       err.Error(),
			"schedule_id": scheduleID,
		})
		return err
	}

	s.invalidateCache(schedule.VehicleID)

	s.logger.Info("Schedule deleted successfully", map[string]interface{}{
		"schedule_id": scheduleID,
	})
	return nil
}

func (s *ScheduleService) resolveMaintenance(ctx context.Context, schedule *domain.MaintenanceSchedule) (domain.MaintenanceData, error) {
	switch schedule.Source.Kind {
	case domain.SourceLibrary:
		if schedule.Source.TemplateID == nil {
			return domain.MaintenanceData{}, fmt.Errorf("library schedule without template id")
		}
		template, err := s.templateRepo.GetTemplateByID(ctx, *schedule.Source.TemplateID)
		if err != nil {
			return domain.MaintenanceData{}, err
		}
		return template.Data, nil
	case domain.SourceCustom:
		if schedule.Source.Custom == nil {
			return domain.MaintenanceData{}, fmt.Errorf("custom schedule without maintenance data")
		}
		return *schedule.Source.Custom, nil
	}
	return domain.MaintenanceData{}, fmt.Errorf("unknown schedule source kind %q", schedule.Source.Kind)
}

func (s *ScheduleService) loadSchedules(ctx context.Context, vehicleID uuid.UUID) ([]*domain.MaintenanceSchedule, error) {
	cacheKey := scheduleCacheKey(vehicleID)
	if cached, err := s.cache.Get(cacheKey); err == nil {
		var schedules []*domain.MaintenanceSchedule
		if err := json.Unmarshal(cached, &schedules); err == nil {
			return schedules, nil
		}
	}

	schedules, err := s.scheduleRepo.GetSchedulesByVehicleID(ctx, vehicleID)
	if err != nil {
		s.logger.Error("Failed to get schedules", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID.String(),
		})
		return nil, err
	}

	if data, err := json.Marshal(schedules); err == nil {
		if err := s.cache.Set(cacheKey, data, scheduleCacheTTL); err != nil {
			s.logger.Warn("Failed to cache schedules", map[string]interface{}{
				"error":      err.Error(),
				"vehicle_id": vehicleID.String(),
			})
		}
	}

	return schedules, nil
}

func (s *ScheduleService) invalidateCache(vehicleID uuid.UUID) {
	if err := s.cache.Delete(scheduleCacheKey(vehicleID)); err != nil {
		s.logger.Warn("Failed to invalidate schedule cache", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID.String(),
		})
	}
}
