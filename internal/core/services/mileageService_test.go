package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMileageService() (*MileageService, *memMileageRepo, *stubMetrics) {
	repo := &memMileageRepo{}
	metrics := &stubMetrics{}
	svc := NewMileageService(repo, NewVehicleLocks(), stubLogger{}, metrics)
	return svc, repo, metrics
}

func TestRecordMileage_FirstEntryAccepted(t *testing.T) {
	svc, repo, metrics := newTestMileageService()
	vehicleID := uuid.New()

	entry, err := svc.RecordMileage(context.Background(), vehicleID, 12000)

	require.NoError(t, err)
	assert.Equal(t, 12000, entry.Mileage)
	assert.Len(t, repo.entries, 1)
	assert.Equal(t, 1, metrics.accepted)
}

func TestRecordMileage_RejectedInsideCooldown(t *testing.T) {
	svc, repo, metrics := newTestMileageService()
	vehicleID := uuid.New()

	base := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.RecordMileage(context.Background(), vehicleID, 12000)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(time.Hour) }
	_, err = svc.RecordMileage(context.Background(), vehicleID, 12050)

	var rateLimited *domain.RateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, vehicleID.String(), rateLimited.VehicleID)
	assert.Equal(t, base.Add(domain.MileageCooldown), rateLimited.NextUpdateAvailable)
	assert.Len(t, repo.entries, 1)
	assert.Equal(t, 1, metrics.rateLimited)
}

func TestRecordMileage_AcceptedAtCooldownBoundary(t *testing.T) {
	svc, repo, _ := newTestMileageService()
	vehicleID := uuid.New()

	base := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.RecordMileage(context.Background(), vehicleID, 12000)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(domain.MileageCooldown) }
	_, err = svc.RecordMileage(context.Background(), vehicleID, 12100)

	require.NoError(t, err)
	assert.Len(t, repo.entries, 2)
}

func TestRecordMileage_CooldownIsPerVehicle(t *testing.T) {
	svc, repo, _ := newTestMileageService()

	base := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.RecordMileage(context.Background(), uuid.New(), 12000)
	require.NoError(t, err)
	_, err = svc.RecordMileage(context.Background(), uuid.New(), 8000)
	require.NoError(t, err)

	assert.Len(t, repo.entries, 2)
}

func TestRecordMileage_LowerReadingStillAccepted(t *testing.T) {
	svc, _, _ := newTestMileageService()
	vehicleID := uuid.New()

	base := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	_, err := svc.RecordMileage(context.Background(), vehicleID, 12000)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(3 * time.Hour) }
	_, err = svc.RecordMileage(context.Background(), vehicleID, 11500)
	require.NoError(t, err)

	current, err := svc.CurrentMileage(context.Background(), vehicleID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 11500, *current)
}

func TestRecordMileage_RejectsNegative(t *testing.T) {
	svc, repo, _ := newTestMileageService()

	_, err := svc.RecordMileage(context.Background(), uuid.New(), -1)

	require.Error(t, err)
	assert.Empty(t, repo.entries)
}

func TestRecordMileage_ConcurrentRequestsOnlyOnePasses(t *testing.T) {
	svc, repo, _ := newTestMileageService()
	vehicleID := uuid.New()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordMileage(context.Background(), vehicleID, 10000+i)
		}(i)
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		var rateLimited *domain.RateLimitedError
		assert.True(t, errors.As(err, &rateLimited))
	}
	assert.Equal(t, 1, accepted)
	assert.Len(t, repo.entries, 1)
}

func TestCurrentMileage_NilWhenLedgerEmpty(t *testing.T) {
	svc, _, _ := newTestMileageService()

	current, err := svc.CurrentMileage(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestCurrentMileage_MostRecentEntryWins(t *testing.T) {
	svc, repo, _ := newTestMileageService()
	vehicleID := uuid.New()

	base := time.Date(2024, time.July, 1, 10, 0, 0, 0, time.UTC)
	repo.entries = []*domain.MileageEntry{
		{ID: uuid.New(), VehicleID: vehicleID, Mileage: 12000, RecordedAt: base},
		{ID: uuid.New(), VehicleID: vehicleID, Mileage: 12500, RecordedAt: base.Add(5 * time.Hour)},
		{ID: uuid.New(), VehicleID: uuid.New(), Mileage: 99999, RecordedAt: base.Add(6 * time.Hour)},
	}

	current, err := svc.CurrentMileage(context.Background(), vehicleID)

	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, 12500, *current)
}
