package services

import (
	"context"
	"fmt"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type TemplateService struct {
	templateRepo ports.TemplateRepository
	logger       ports.LoggerPort
	validate     *validator.Validate
}

func NewTemplateService(
	templateRepo ports.TemplateRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		logger:       logger,
		validate:     validate,
	}
}

func (s *TemplateService) CreateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error) {
	if err := s.validate.Struct(&template.Data); err != nil {
		s.logger.Error("Template validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if err := template.Data.Recurrence.Validate(); err != nil {
		return nil, err
	}

	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}

	created, err := s.templateRepo.CreateTemplate(ctx, template)
	if err != nil {
		s.logger.Error("Failed to create template", map[string]interface{}{
			"error": err.Error(),
			"name":  template.Data.Name,
		})
		return nil, err
	}

	s.logger.Info("Template created successfully", map[string]interface{}{
		"template_id": created.ID.String(),
		"name":        created.Data.Name,
	})

	return created, nil
}

func (s *TemplateService) GetTemplateByID(ctx context.Context, templateID string) (*domain.MaintenanceTemplate, error) {
	id, err := uuid.Parse(templateID)
	if err != nil {
		return nil, fmt.Errorf("invalid template ID: %w", err)
	}
	return s.templateRepo.GetTemplateByID(ctx, id)
}

func (s *TemplateService) ListTemplates(ctx context.Context, category string) ([]*domain.MaintenanceTemplate, error) {
	templates, err := s.templateRepo.ListTemplates(ctx, category)
	if err != nil {
		s.logger.Error("Failed to list templates", map[string]interface{}{
			"error":    err.Error(),
			"category": category,
		})
		return nil, err
	}
	return templates, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, template *domain.MaintenanceTemplate) (*domain.MaintenanceTemplate, error) {
	if err := s.validate.Struct(&template.Data); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if err := template.Data.Recurrence.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.templateRepo.UpdateTemplate(ctx, template)
	if err != nil {
		s.logger.Error("Failed to update template", map[string]interface{}{
			"error":       err.Error(),
			"template_id": template.ID.String(),
		})
		return nil, err
	}

	s.logger.Info("Template updated successfully", map[string]interface{}{
		"template_id": updated.ID.String(),
	})

	return updated, nil
}

// DeleteTemplate refuses to remove a template still referenced by
// schedules.
func (s *TemplateService) DeleteTemplate(ctx context.Context, templateID string) error {
	id, err := uuid.Parse(templateID)
	if err != nil {
		return fmt.Errorf("invalid template ID: %w", err)
	}

	count, err := s.templateRepo.CountSchedulesByTemplateID(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Warn("Refusing to delete referenced template", map[string]interface{}{
			"template_id": templateID,
			"schedules":   count,
		})
		return domain.ErrTemplateInUse
	}

	if err := s.templateRepo.DeleteTemplate(ctx, id); err != nil {
		s.logger.Error("Failed to delete template", map[string]interface{}{
			"error":       err.Error(),
			"template_id": templateID,
		})
		return err
	}

	s.logger.Info("Template deleted successfully", map[string]interface{}{
		"template_id": templateID,
	})
	return nil
}
