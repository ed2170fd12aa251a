package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type EquipmentRepository struct {
	db *sql.DB
}

func NewEquipmentRepository(db *sql.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment *domain.Equipment) (*domain.Equipment, error) {
	query := `INSERT INTO equipment (id, vehicle_id, name, category, brand, model, installed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		equipment.ID,
		equipment.VehicleID,
		equipment.Name,
		equipment.Category,
		equipment.Brand,
		equipment.Model,
		equipment.InstalledAt,
	).Scan(
		&equipment.ID,
		&equipment.CreatedAt,
		&equipment.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23503":
				return nil, domain.ErrVehicleNotFound
			}
		}
		return nil, err
	}
	return equipment, nil
}

func (r *EquipmentRepository) GetEquipmentByID(ctx context.Context, equipmentID uuid.UUID) (*domain.Equipment, error) {
	query := `SELECT id, vehicle_id, name, category, brand, model, installed_at, created_at, updated_at
		FROM equipment WHERE id = $1`

	equipment := &domain.Equipment{}
	err := r.db.QueryRowContext(ctx, query, equipmentID).Scan(
		&equipment.ID,
		&equipment.VehicleID,
		&equipment.Name,
		&equipment.Category,
		&equipment.Brand,
		&equipment.Model,
		&equipment.InstalledAt,
		&equipment.CreatedAt,
		&equipment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrEquipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return equipment, nil
}

func (r *EquipmentRepository) GetEquipmentByVehicleID(ctx context.Context, vehicleID uuid.UUID) ([]*domain.Equipment, error) {
	query := `SELECT id, vehicle_id, name, category, brand, model, installed_at, created_at, updated_at
		FROM equipment WHERE vehicle_id = $1
		ORDER BY installed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.Equipment
	for rows.Next() {
		equipment := &domain.Equipment{}
		err := rows.Scan(
			&equipment.ID,
			&equipment.VehicleID,
			&equipment.Name,
			&equipment.Category,
			&equipment.Brand,
			&equipment.Model,
			&equipment.InstalledAt,
			&equipment.CreatedAt,
			&equipment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, equipment)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, equipmentID uuid.UUID) error {
	query := `DELETE FROM equipment WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, equipmentID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrEquipmentNotFound
	}
	return nil
}
