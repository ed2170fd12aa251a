package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MileageRepository struct {
	db *sql.DB
}

func NewMileageRepository(db *sql.DB) *MileageRepository {
	return &MileageRepository{db: db}
}

func (r *MileageRepository) AppendMileage(ctx context.Context, entry *domain.MileageEntry) (*domain.MileageEntry, error) {
	query := `INSERT INTO mileage_entries (id, vehicle_id, mileage, recorded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, recorded_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.VehicleID,
		entry.Mileage,
		entry.RecordedAt,
	).Scan(
		&entry.ID,
		&entry.RecordedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("failed to append mileage entry: %w", err)
	}
	return entry, nil
}

func (r *MileageRepository) LatestMileage(ctx context.Context, vehicleID uuid.UUID) (*domain.MileageEntry, error) {
	query := `SELECT id, vehicle_id, mileage, recorded_at
		FROM mileage_entries
		WHERE vehicle_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1`

	entry := &domain.MileageEntry{}
	err := r.db.QueryRowContext(ctx, query, vehicleID).Scan(
		&entry.ID,
		&entry.VehicleID,
		&entry.Mileage,
		&entry.RecordedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *MileageRepository) GetMileageByVehicleID(ctx context.Context, vehicleID uuid.UUID, limit int) ([]*domain.MileageEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, vehicle_id, mileage, recorded_at
		FROM mileage_entries
		WHERE vehicle_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, vehicleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.MileageEntry
	for rows.Next() {
		entry := &domain.MileageEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.VehicleID,
			&entry.Mileage,
			&entry.RecordedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
