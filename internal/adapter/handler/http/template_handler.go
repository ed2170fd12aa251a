package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService *services.TemplateService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

func NewTemplateHandler(
	templateService *services.TemplateService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
		metrics:         metrics,
	}
}

type TemplateRequest struct {
	Data domain.MaintenanceData `json:"data" binding:"required"`
}

type TemplateResponse struct {
	ID        string                 `json:"id"`
	Data      domain.MaintenanceData `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
	Count     int                `json:"count"`
}

// @Summary Create maintenance template
// @Description Add a maintenance definition to the shared library (admin only)
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TemplateRequest true "Template data"
// @Success 201 {object} TemplateResponse "Template created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin only"
// @Failure 422 {object} errorResponse "Invalid recurrence rule"
// @Router /templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if !h.requireAdmin(c) {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create template", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	template := &domain.MaintenanceTemplate{Data: req.Data}

	created, err := h.templateService.CreateTemplate(c.Request.Context(), template)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRecurrence) {
			newErrorResponse(c, http.StatusUnprocessableEntity, "Recurrence rule needs at least one trigger")
			return
		}
		newErrorResponse(c, domainErrorStatus(err), "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, toTemplateResponse(created))
}

// @Summary List maintenance templates
// @Description List library templates, optionally filtered by category
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param category query string false "Category filter"
// @Success 200 {object} TemplateListResponse "Templates"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authorizationPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), c.Query("category"))
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	items := make([]TemplateResponse, len(templates))
	for i, template := range templates {
		items[i] = toTemplateResponse(template)
	}

	c.JSON(http.StatusOK, TemplateListResponse{
		Templates: items,
		Count:     len(items),
	})
}

// @Summary Get maintenance template
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} TemplateResponse "Template"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 404 {object} errorResponse "Template not found"
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if _, exists := getAuthPayload(c, authorizationPayloadKey); !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	template, err := h.templateService.GetTemplateByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Template not found")
		return
	}

	c.JSON(http.StatusOK, toTemplateResponse(template))
}

// @Summary Update maintenance template
// @Description Edit a library template (admin only)
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body TemplateRequest true "Template data"
// @Success 200 {object} TemplateResponse "Template updated"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin only"
// @Failure 404 {object} errorResponse "Template not found"
// @Router /templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if !h.requireAdmin(c) {
		return
	}

	template, err := h.templateService.GetTemplateByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Template not found")
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	template.Data = req.Data

	updated, err := h.templateService.UpdateTemplate(c.Request.Context(), template)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRecurrence) {
			newErrorResponse(c, http.StatusUnprocessableEntity, "Recurrence rule needs at least one trigger")
			return
		}
		newErrorResponse(c, domainErrorStatus(err), "Failed to update template")
		return
	}

	c.JSON(http.StatusOK, toTemplateResponse(updated))
}

// @Summary Delete maintenance template
// @Description Remove a library template; refused while schedules reference it (admin only)
// @Tags templates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} successResponse "Template deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Admin only"
// @Failure 404 {object} errorResponse "Template not found"
// @Failure 409 {object} errorResponse "Template still referenced"
// @Router /templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	if !h.requireAdmin(c) {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrTemplateInUse) {
			newErrorResponse(c, http.StatusConflict, "Template is referenced by existing schedules")
			return
		}
		newErrorResponse(c, domainErrorStatus(err), "Failed to delete template")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Template deleted successfully"})
}

func (h *TemplateHandler) requireAdmin(c *gin.Context) bool {
	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if payload.Role != domain.Admin {
		h.logger.Warn("Non-admin attempted template write", map[string]interface{}{
			"requester_id": payload.UserID.String(),
			"ip":           c.ClientIP(),
		})
		newErrorResponse(c, http.StatusForbidden, "Admin only")
		return false
	}
	return true
}

func toTemplateResponse(template *domain.MaintenanceTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        template.ID.String(),
		Data:      template.Data,
		CreatedAt: template.CreatedAt,
		UpdatedAt: template.UpdatedAt,
	}
}
