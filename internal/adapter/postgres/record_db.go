package postgres

import (
	"context"
	"database/sql"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) GetRecordsByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*domain.MaintenanceRecord, error) {
	query := `SELECT id, schedule_id, completed_at, mileage_at_completion, cost, location, notes, attachments, created_at
		FROM maintenance_records
		WHERE schedule_id = $1
		ORDER BY completed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.MaintenanceRecord
	for rows.Next() {
		record := &domain.MaintenanceRecord{}
		var mileage sql.NullInt64
		err := rows.Scan(
			&record.ID,
			&record.ScheduleID,
			&record.CompletedAt,
			&mileage,
			&record.Cost,
			&record.Location,
			&record.Notes,
			pq.Array(&record.Attachments),
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if mileage.Valid {
			m := int(mileage.Int64)
			record.MileageAtCompletion = &m
		}
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
