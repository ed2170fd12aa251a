package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubLogger struct{}

func (stubLogger) Debug(msg string, fields map[string]interface{}) {}
func (stubLogger) Info(msg string, fields map[string]interface{})  {}
func (stubLogger) Warn(msg string, fields map[string]interface{})  {}
func (stubLogger) Error(msg string, fields map[string]interface{}) {}

type stubMetrics struct {
	mu          sync.Mutex
	completions int
	accepted    int
	rateLimited int
}

func (m *stubMetrics) RecordMetrics(c *gin.Context, start time.Time) {}

func (m *stubMetrics) CompletionRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions++
}

func (m *stubMetrics) MileageAccepted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted++
}

func (m *stubMetrics) MileageRateLimited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimited++
}

type stubCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]byte)}
}

func (c *stubCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	return nil, errors.New("cache miss")
}

func (c *stubCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *stubCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// memMileageRepo is an in-memory append-only ledger.
type memMileageRepo struct {
	mu      sync.Mutex
	entries []*domain.MileageEntry
}

func (r *memMileageRepo) AppendMileage(ctx context.Context, entry *domain.MileageEntry) (*domain.MileageEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *memMileageRepo) LatestMileage(ctx context.Context, vehicleID uuid.UUID) (*domain.MileageEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *domain.MileageEntry
	for _, e := range r.entries {
		if e.VehicleID != vehicleID {
			continue
		}
		if latest == nil || e.RecordedAt.After(latest.RecordedAt) {
			latest = e
		}
	}
	return latest, nil
}

func (r *memMileageRepo) GetMileageByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit int) ([]*domain.MileageEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.MileageEntry
	for _, e := range r.entries {
		if e.VehicleID == vehicleID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memScheduleRepo stores schedules keyed by ID and applies completions
// atomically against its map. applyErr simulates a failed transaction.
type memScheduleRepo struct {
	mu        sync.Mutex
	schedules map[uuid.UUID]*domain.MaintenanceSchedule
	records   []*domain.MaintenanceRecord
	applyErr  error
}

func newMemScheduleRepo() *memScheduleRepo {
	return &memScheduleRepo{schedules: make(map[uuid.UUID]*domain.MaintenanceSchedule)}
}

func (r *memScheduleRepo) CreateSchedule(ctx context.Context, schedule *domain.MaintenanceSchedule) (*domain.MaintenanceSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *schedule
	r.schedules[schedule.ID] = &copied
	return schedule, nil
}

func (r *memScheduleRepo) GetScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.MaintenanceSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[scheduleID]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memScheduleRepo) GetSchedulesByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*domain.MaintenanceSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.MaintenanceSchedule
	for _, s := range r.schedules {
		if s.VehicleID == vehicleID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memScheduleRepo) ApplyCompletion(ctx context.Context, schedule *domain.MaintenanceSchedule, record *domain.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applyErr != nil {
		return r.applyErr
	}
	copied := *schedule
	r.schedules[schedule.ID] = &copied
	r.records = append(r.records, record)
	return nil
}

func (r *memScheduleRepo) DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.schedules, scheduleID)
	return nil
}

type memRecordRepo struct {
	schedules *memScheduleRepo
}

func (r *memRecordRepo) GetRecordsByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*domain.MaintenanceRecord, error) {
	r.schedules.mu.Lock()
	defer r.schedules.mu.Unlock()
	var out []*domain.MaintenanceRecord
	for _, rec := range r.schedules.records {
		if rec.ScheduleID == scheduleID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memTemplateRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*domain.MaintenanceTemplate
	inUse     int
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: make(map[uuid.UUID]*domain.MaintenanceTemplate)}
}

func (r *memTemplateRepo) CreateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.ID] = template
	return template, nil
}

func (r *memTemplateRepo) GetTemplateByID(ctx context.Context, templateID uuid.UUID) (*domain.MaintenanceTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[templateID]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (r *memTemplateRepo) ListTemplates(ctx context.Context, category string) ([]*domain.MaintenanceTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.MaintenanceTemplate
	for _, t := range r.templates {
		if category == "" || t.Data.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTemplateRepo) UpdateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[template.ID]; !ok {
		return nil, domain.ErrTemplateNotFound
	}
	r.templates[template.ID] = template
	return template, nil
}

func (r *memTemplateRepo) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[templateID]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(r.templates, templateID)
	return nil
}

func (r *memTemplateRepo) CountSchedulesByTemplateID(ctx context.Context, templateID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inUse, nil
}

type memEquipmentRepo struct {
	mu        sync.Mutex
	equipment map[uuid.UUID]*domain.Equipment
}

func newMemEquipmentRepo() *memEquipmentRepo {
	return &memEquipmentRepo{equipment: make(map[uuid.UUID]*domain.Equipment)}
}

func (r *memEquipmentRepo) CreateEquipment(ctx context.Context, equipment *domain.Equipment) (*domain.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.equipment[equipment.ID] = equipment
	return equipment, nil
}

func (r *memEquipmentRepo) GetEquipmentByID(ctx context.Context, equipmentID uuid.UUID) (*domain.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.equipment[equipmentID]
	if !ok {
		return nil, domain.ErrEquipmentNotFound
	}
	return e, nil
}

func (r *memEquipmentRepo) GetEquipmentByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*domain.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Equipment
	for _, e := range r.equipment {
		if e.VehicleID == vehicleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memEquipmentRepo) DeleteEquipment(ctx context.Context, equipmentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.equipment, equipmentID)
	return nil
}
