package services

import (
	"sync"

	"github.com/google/uuid"
)

// VehicleLocks serializes writes per vehicle. Completions and mileage
// updates racing for the same vehicle go through the same critical
// section so a completion's fallback read of the current mileage cannot
// observe a value concurrently being superseded.
type VehicleLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewVehicleLocks() *VehicleLocks {
	return &VehicleLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the vehicle's mutex and returns the unlock function.
func (v *VehicleLocks) Lock(vehicleID uuid.UUID) func() {
	v.mu.Lock()
	m, ok := v.locks[vehicleID]
	if !ok {
		m = &sync.Mutex{}
		v.locks[vehicleID] = m
	}
	v.mu.Unlock()

	m.Lock()
	return m.Unlock
}
