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

type TemplateRepository struct {
	db *sql.DB
}

func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) CreateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error) {
	data, err := json.Marshal(template.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template data: %w", err)
	}

	query := `INSERT INTO maintenance_templates (id, name, category, priority, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		template.ID,
		template.Data.Name,
		template.Data.Category,
		template.Data.Priority,
		data,
	).Scan(
		&template.ID,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23502" {
			return nil, fmt.Errorf("required field is missing")
		}
		return nil, err
	}
	return template, nil
}

func (r *TemplateRepository) GetTemplateByID(ctx context.Context, templateID uuid.UUID) (*domain.MaintenanceTemplate, error) {
	query := `SELECT id, data, created_at, updated_at
		FROM maintenance_templates WHERE id = $1`

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, templateID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return template, nil
}

func (r *TemplateRepository) ListTemplates(ctx context.Context, category string) ([]*domain.MaintenanceTemplate, error) {
	query := `SELECT id, data, created_at, updated_at
		FROM maintenance_templates
		WHERE $1 = '' OR category = $1
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.MaintenanceTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepository) UpdateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error) {
	data, err := json.Marshal(template.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode template data: %w", err)
	}

	query := `UPDATE maintenance_templates
		SET name = $1,
			category = $2,
			priority = $3,
			data = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
		RETURNING id, data, created_at, updated_at`

	updated, err := scanTemplate(r.db.QueryRowContext(ctx, query,
		template.Data.Name,
		template.Data.Category,
		template.Data.Priority,
		data,
		template.ID,
	))
	if err == sql.ErrNoRows {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating template: %w", err)
	}
	return updated, nil
}

func (r *TemplateRepository) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	query := `DELETE FROM maintenance_templates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, templateID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return domain.ErrTemplateInUse
		}
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepository) CountSchedulesByTemplateID(ctx context.Context, templateID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM maintenance_schedules WHERE template_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, templateID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanTemplate(row rowScanner) (*domain.MaintenanceTemplate, error) {
	template := &domain.MaintenanceTemplate{}
	var data []byte

	err := row.Scan(
		&template.ID,
		&data,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &template.Data); err != nil {
		return nil, fmt.Errorf("failed to decode template data: %w", err)
	}
	return template, nil
}
