package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ScheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, vehicle_id, equipment_id, source_kind, template_id, custom_data,
		created_mileage, last_completed_at, last_completed_mileage, created_at, updated_at`

func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule *domain.MaintenanceSchedule) (*domain.MaintenanceSchedule, error) {
	customData, err := marshalCustomData(schedule.Source.Custom)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO maintenance_schedules
		(id, vehicle_id, equipment_id, source_kind, template_id, custom_data, created_mileage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		schedule.ID,
		schedule.VehicleID,
		schedule.EquipmentID,
		schedule.Source.Kind,
		nullUUID(schedule.Source.TemplateID),
		customData,
		schedule.CreatedMileage,
		schedule.CreatedAt,
	).Scan(
		&schedule.ID,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, fmt.Errorf("vehicle or equipment does not exist")
			}
		}
		return nil, err
	}
	return schedule, nil
}

func (r *ScheduleRepository) GetScheduleByID(ctx context.Context, scheduleID uuid.UUID) (*domain.MaintenanceSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM maintenance_schedules WHERE id = $1`

	schedule, err := scanSchedule(r.db.QueryRowContext(ctx, query, scheduleID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

func (r *ScheduleRepository) GetSchedulesByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*domain.MaintenanceSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM maintenance_schedules
		WHERE vehicle_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []*domain.MaintenanceSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ApplyCompletion appends the completion record and moves the schedule's
// reference point inside a single transaction, so the schedule never
// points at a completion that has no history entry.
func (r *ScheduleRepository) ApplyCompletion(ctx context.Context, schedule *domain.MaintenanceSchedule, record *domain.MaintenanceRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	recordQuery := `INSERT INTO maintenance_records
		(id, schedule_id, completed_at, mileage_at_completion, cost, location, notes, attachments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctx, recordQuery,
		record.ID,
		record.ScheduleID,
		record.CompletedAt,
		nullInt(record.MileageAtCompletion),
		record.Cost,
		record.Location,
		record.Notes,
		pq.Array(record.Attachments),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert maintenance record: %w", err)
	}

	scheduleQuery := `UPDATE maintenance_schedules
		SET last_completed_at = $1,
			last_completed_mileage = $2,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`

	result, err := tx.ExecContext(ctx, scheduleQuery,
		schedule.LastCompletedAt,
		nullInt(schedule.LastCompletedMileage),
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule reference point: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrScheduleNotFound
	}

	return tx.Commit()
}

func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	query := `DELETE FROM maintenance_schedules WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, scheduleID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*domain.MaintenanceSchedule, error) {
	schedule := &domain.MaintenanceSchedule{}
	var (
		templateID           uuid.NullUUID
		customData           []byte
		lastCompletedAt      sql.NullTime
		lastCompletedMileage sql.NullInt64
	)

	err := row.Scan(
		&schedule.ID,
		&schedule.VehicleID,
		&schedule.EquipmentID,
		&schedule.Source.Kind,
		&templateID,
		&customData,
		&schedule.CreatedMileage,
		&lastCompletedAt,
		&lastCompletedMileage,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if templateID.Valid {
		id := templateID.UUID
		schedule.Source.TemplateID = &id
	}
	if len(customData) > 0 {
		var data domain.MaintenanceData
		if err := json.Unmarshal(customData, &data); err != nil {
			return nil, fmt.Errorf("failed to decode custom maintenance data: %w", err)
		}
		schedule.Source.Custom = &data
	}
	if lastCompletedAt.Valid {
		t := lastCompletedAt.Time
		schedule.LastCompletedAt = &t
	}
	if lastCompletedMileage.Valid {
		m := int(lastCompletedMileage.Int64)
		schedule.LastCompletedMileage = &m
	}
	return schedule, nil
}

func marshalCustomData(data *domain.MaintenanceData) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode custom maintenance data: %w", err)
	}
	return encoded, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
