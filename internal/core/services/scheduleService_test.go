package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleFixture struct {
	svc         *ScheduleService
	mileageSvc  *MileageService
	scheduleDB  *memScheduleRepo
	templateDB  *memTemplateRepo
	equipmentDB *memEquipmentRepo
	mileageDB   *memMileageRepo
	metrics     *stubMetrics
	cache       *stubCache
	vehicleID   uuid.UUID
	equipmentID uuid.UUID
}

func newScheduleFixture() *scheduleFixture {
	scheduleDB := newMemScheduleRepo()
	templateDB := newMemTemplateRepo()
	equipmentDB := newMemEquipmentRepo()
	mileageDB := &memMileageRepo{}
	metrics := &stubMetrics{}
	cache := newStubCache()
	locks := NewVehicleLocks()

	mileageSvc := NewMileageService(mileageDB, locks, stubLogger{}, metrics)
	svc := NewScheduleService(
		scheduleDB,
		&memRecordRepo{schedules: scheduleDB},
		templateDB,
		equipmentDB,
		mileageSvc,
		locks,
		stubLogger{},
		validator.New(),
		cache,
		metrics,
	)

	f := &scheduleFixture{
		svc:         svc,
		mileageSvc:  mileageSvc,
		scheduleDB:  scheduleDB,
		templateDB:  templateDB,
		equipmentDB: equipmentDB,
		mileageDB:   mileageDB,
		metrics:     metrics,
		cache:       cache,
		vehicleID:   uuid.New(),
		equipmentID: uuid.New(),
	}
	equipmentDB.equipment[f.equipmentID] = &domain.Equipment{
		ID:        f.equipmentID,
		VehicleID: f.vehicleID,
		Name:      "Drive chain",
	}
	return f
}

func (f *scheduleFixture) freeze(t time.Time) {
	f.svc.now = func() time.Time { return t }
	f.mileageSvc.now = func() time.Time { return t }
}

func chainLube() domain.MaintenanceData {
	return domain.MaintenanceData{
		Name:     "Chain lubrication",
		Priority: domain.PriorityImportant,
		Recurrence: domain.RecurrenceRule{
			Time:       &domain.TimeTrigger{Value: 6, Unit: domain.UnitMonths},
			Kilometers: 5000,
		},
	}
}

func TestCreateSchedule_CapturesCreationReference(t *testing.T) {
	f := newScheduleFixture()
	createdAt := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	f.freeze(createdAt.Add(-3 * time.Hour))
	_, err := f.mileageSvc.RecordMileage(context.Background(), f.vehicleID, 10000)
	require.NoError(t, err)
	f.freeze(createdAt)

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})

	require.NoError(t, err)
	assert.Equal(t, createdAt, created.CreatedAt)
	assert.Equal(t, 10000, created.CreatedMileage)
}

func TestCreateSchedule_ZeroMileageWhenLedgerEmpty(t *testing.T) {
	f := newScheduleFixture()

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, created.CreatedMileage)
}

func TestCreateSchedule_RejectsEmptyRecurrence(t *testing.T) {
	f := newScheduleFixture()
	data := chainLube()
	data.Recurrence = domain.RecurrenceRule{}

	_, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(data),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidRecurrence)
}

func TestCreateSchedule_RejectsUnknownTemplate(t *testing.T) {
	f := newScheduleFixture()

	_, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.LibrarySource(uuid.New()),
	})

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestCreateSchedule_RejectsForeignEquipment(t *testing.T) {
	f := newScheduleFixture()
	otherEquipment := uuid.New()
	f.equipmentDB.equipment[otherEquipment] = &domain.Equipment{
		ID:        otherEquipment,
		VehicleID: uuid.New(),
		Name:      "Roof rack",
	}

	_, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: otherEquipment,
		Source:      domain.CustomSource(chainLube()),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestComplete_RejectsFutureDate(t *testing.T) {
	f := newScheduleFixture()
	now := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)
	f.freeze(now)

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	_, _, err = f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt: now.Add(24 * time.Hour),
	})

	assert.ErrorIs(t, err, domain.ErrFutureCompletionDate)
	assert.Empty(t, f.scheduleDB.records)
}

func TestComplete_ResetsReferencePoint(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	completedAt := time.Date(2024, time.July, 5, 14, 0, 0, 0, time.UTC)
	mileage := 16000
	f.freeze(time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC))

	updated, record, err := f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt:         completedAt,
		MileageAtCompletion: &mileage,
	})

	require.NoError(t, err)
	require.NotNil(t, updated.LastCompletedAt)
	require.NotNil(t, updated.LastCompletedMileage)
	assert.Equal(t, completedAt, *updated.LastCompletedAt)
	assert.Equal(t, 16000, *updated.LastCompletedMileage)
	assert.Equal(t, created.ID, record.ScheduleID)
	assert.Equal(t, 1, f.metrics.completions)

	// Next occurrence projects from the completion, not the creation.
	p := domain.Project(chainLube().Recurrence, updated.ReferencePoint(nil))
	require.NotNil(t, p.NextDueDate)
	require.NotNil(t, p.NextDueKm)
	assert.Equal(t, time.Date(2025, time.January, 5, 14, 0, 0, 0, time.UTC), *p.NextDueDate)
	assert.Equal(t, 21000, *p.NextDueKm)
}

func TestComplete_WithoutMileageKeepsPriorValue(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	f.freeze(time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC))
	updated, _, err := f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt: time.Date(2024, time.July, 5, 14, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.NotNil(t, updated.LastCompletedAt)
	assert.Nil(t, updated.LastCompletedMileage)
}

func TestComplete_AtomicOnRepositoryFailure(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	f.scheduleDB.applyErr = errors.New("connection reset")
	f.freeze(time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC))

	_, _, err = f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt: time.Date(2024, time.July, 5, 14, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)

	stored, err := f.scheduleDB.GetScheduleByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastCompletedAt)
	assert.Empty(t, f.scheduleDB.records)
	assert.Equal(t, 0, f.metrics.completions)
}

func TestComplete_OffersMileageToLedger(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	mileage := 16000
	f.freeze(time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC))
	_, _, err = f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt:         time.Date(2024, time.July, 5, 14, 0, 0, 0, time.UTC),
		MileageAtCompletion: &mileage,
	})
	require.NoError(t, err)

	current, err := f.mileageSvc.CurrentMileage(context.Background(), f.vehicleID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 16000, *current)
}

func TestComplete_LedgerCooldownRejectionIsNotAnError(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	completionTime := time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC)
	f.freeze(completionTime)
	_, err = f.mileageSvc.RecordMileage(context.Background(), f.vehicleID, 15900)
	require.NoError(t, err)

	mileage := 16000
	updated, _, err := f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt:         completionTime.Add(-time.Hour),
		MileageAtCompletion: &mileage,
	})

	require.NoError(t, err)
	require.NotNil(t, updated.LastCompletedMileage)
	assert.Equal(t, 16000, *updated.LastCompletedMileage)

	// Ledger kept its accepted reading; the completion mileage still
	// updated the schedule's reference point above.
	current, err := f.mileageSvc.CurrentMileage(context.Background(), f.vehicleID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 15900, *current)
}

func TestGetScoredSchedules_RanksByUrgency(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	overdue := chainLube()
	overdue.Name = "Brake fluid"
	overdue.Recurrence = domain.RecurrenceRule{Time: &domain.TimeTrigger{Value: 30, Unit: domain.UnitDays}}

	distant := chainLube()
	distant.Name = "Valve clearance"
	distant.Recurrence = domain.RecurrenceRule{Time: &domain.TimeTrigger{Value: 2, Unit: domain.UnitYears}}

	for _, data := range []domain.MaintenanceData{overdue, distant} {
		_, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
			VehicleID:   f.vehicleID,
			EquipmentID: f.equipmentID,
			Source:      domain.CustomSource(data),
		})
		require.NoError(t, err)
	}

	f.freeze(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC))
	scored, err := f.svc.GetScoredSchedules(context.Background(), f.vehicleID)

	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "Brake fluid", scored[0].Maintenance.Name)
	assert.Equal(t, domain.StatusOverdue, scored[0].Assessment.Status)
	assert.Equal(t, "Valve clearance", scored[1].Maintenance.Name)
	assert.Equal(t, domain.StatusPending, scored[1].Assessment.Status)
}

func TestGetScoredSchedules_OmitsDistanceWithoutLedger(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	scored, err := f.svc.GetScoredSchedules(context.Background(), f.vehicleID)

	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Nil(t, scored[0].Assessment.KmRemaining)
	assert.LessOrEqual(t, scored[0].Assessment.Urgency, 50)
}

func TestComplete_InvalidatesScheduleCache(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	// Prime the cache.
	_, err = f.svc.GetScoredSchedules(context.Background(), f.vehicleID)
	require.NoError(t, err)
	_, cacheErr := f.cache.Get(scheduleCacheKey(f.vehicleID))
	require.NoError(t, cacheErr)

	f.freeze(time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC))
	_, _, err = f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt: time.Date(2024, time.July, 5, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, cacheErr = f.cache.Get(scheduleCacheKey(f.vehicleID))
	assert.Error(t, cacheErr)
}

func TestDeleteSchedule_RemovesScheduleAndInvalidatesCache(t *testing.T) {
	f := newScheduleFixture()

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSchedule(context.Background(), created.ID.String()))

	_, err = f.scheduleDB.GetScheduleByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrScheduleNotFound)
}

func TestGetHistory_ReturnsCompletionRecords(t *testing.T) {
	f := newScheduleFixture()
	f.freeze(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))

	created, err := f.svc.CreateSchedule(context.Background(), &domain.MaintenanceSchedule{
		VehicleID:   f.vehicleID,
		EquipmentID: f.equipmentID,
		Source:      domain.CustomSource(chainLube()),
	})
	require.NoError(t, err)

	f.freeze(time.Date(2024, time.July, 5, 18, 0, 0, 0, time.UTC))
	_, _, err = f.svc.Complete(context.Background(), created.ID.String(), domain.CompletionEvent{
		CompletedAt: time.Date(2024, time.July, 5, 14, 0, 0, 0, time.UTC),
		Notes:       "Replaced pads front and rear",
	})
	require.NoError(t, err)

	records, err := f.svc.GetHistory(context.Background(), created.ID.String())

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Replaced pads front and rear", records[0].Notes)
}
