package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type VehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	query := `INSERT INTO vehicles (id, user_id, name, type, make, model, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		vehicle.ID,
		vehicle.UserID,
		vehicle.Name,
		vehicle.Type,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
	).Scan(
		&vehicle.ID,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23505":
				return nil, fmt.Errorf("vehicle already exists")
			}
		}
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) GetVehicleByID(ctx context.Context, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	query := `SELECT id, user_id, name, type, make, model, year, created_at, updated_at
		FROM vehicles WHERE id = $1`

	vehicle := &domain.Vehicle{}
	err := r.db.QueryRowContext(ctx, query, vehicleID).Scan(
		&vehicle.ID,
		&vehicle.UserID,
		&vehicle.Name,
		&vehicle.Type,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *VehicleRepository) GetVehiclesByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Vehicle, error) {
	query := `SELECT id, user_id, name, type, make, model, year, created_at, updated_at
		FROM vehicles WHERE user_id = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle := &domain.Vehicle{}
		err := rows.Scan(
			&vehicle.ID,
			&vehicle.UserID,
			&vehicle.Name,
			&vehicle.Type,
			&vehicle.Make,
			&vehicle.Model,
			&vehicle.Year,
			&vehicle.CreatedAt,
			&vehicle.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *VehicleRepository) UpdateVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	query := `UPDATE vehicles
		SET
			name = COALESCE(NULLIF($1, ''), name),
			make = COALESCE(NULLIF($2, ''), make),
			model = COALESCE(NULLIF($3, ''), model),
			year = COALESCE(NULLIF($4, 0), year),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING id, user_id, name, type, make, model, year, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		vehicle.Name,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.ID,
	).Scan(
		&vehicle.ID,
		&vehicle.UserID,
		&vehicle.Name,
		&vehicle.Type,
		&vehicle.Make,
		&vehicle.Model,
		&vehicle.Year,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating vehicle: %w", err)
	}
	return vehicle, nil
}

func (r *VehicleRepository) DeleteVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	query := `DELETE FROM vehicles WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, vehicleID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrVehicleNotFound
	}
	return nil
}
