package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	vehicleService  *services.VehicleService
	logger          ports.LoggerPort
	metrics         ports.MetricsPort
}

func NewScheduleHandler(
	scheduleService *services.ScheduleService,
	vehicleService *services.VehicleService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		vehicleService:  vehicleService,
		logger:          logger,
		metrics:         metrics,
	}
}

type CreateScheduleRequest struct {
	VehicleID   string                  `json:"vehicle_id" binding:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	EquipmentID string                  `json:"equipment_id" binding:"required" example:"123e4567-e89b-12d3-a456-426614174001"`
	TemplateID  *string                 `json:"template_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174002"`
	Custom      *domain.MaintenanceData `json:"custom,omitempty"`
}

type ScheduleResponse struct {
	ScheduleID           string     `json:"schedule_id"`
	VehicleID            string     `json:"vehicle_id"`
	EquipmentID          string     `json:"equipment_id"`
	SourceKind           string     `json:"source_kind"`
	TemplateID           *string    `json:"template_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	CreatedMileage       int        `json:"created_mileage"`
	LastCompletedAt      *time.Time `json:"last_completed_at,omitempty"`
	LastCompletedMileage *int       `json:"last_completed_mileage,omitempty"`
}

type ScoredScheduleResponse struct {
	ScheduleID       string     `json:"schedule_id"`
	Name             string     `json:"name"`
	Priority         string     `json:"priority"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	NextDueKm        *int       `json:"next_due_kilometers,omitempty"`
	DaysRemaining    *int       `json:"days_remaining,omitempty"`
	KmRemaining      *int       `json:"km_remaining,omitempty"`
	Urgency          int        `json:"urgency"`
	Status           string     `json:"status"`
}

type ScoredSchedulesResponse struct {
	Schedules []ScoredScheduleResponse `json:"schedules"`
	Count     int                      `json:"count"`
}

type CompleteScheduleRequest struct {
	CompletedAt         time.Time `json:"completed_at" binding:"required" example:"2024-07-05T00:00:00Z"`
	MileageAtCompletion *int      `json:"mileage_at_completion,omitempty" example:"16000"`
	Cost                float64   `json:"cost,omitempty" example:"89.90"`
	Location            string    `json:"location,omitempty" example:"Garage Muller"`
	Notes               string    `json:"notes,omitempty"`
	Attachments         []string  `json:"attachments,omitempty"`
}

type CompleteScheduleResponse struct {
	Schedule ScheduleResponse         `json:"schedule"`
	Record   MaintenanceRecordInfo    `json:"record"`
}

type MaintenanceRecordInfo struct {
	ID                  string    `json:"id"`
	ScheduleID          string    `json:"schedule_id"`
	CompletedAt         time.Time `json:"completed_at"`
	MileageAtCompletion *int      `json:"mileage_at_completion,omitempty"`
	Cost                float64   `json:"cost,omitempty"`
	Location            string    `json:"location,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	Attachments         []string  `json:"attachments,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

type ScheduleHistoryResponse struct {
	Records []MaintenanceRecordInfo `json:"records"`
	Count   int                     `json:"count"`
}

// @Summary Create maintenance schedule
// @Description Attach a library or custom maintenance to an equipment instance
// @Tags schedules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateScheduleRequest true "Schedule data"
// @Success 201 {object} ScheduleResponse "Schedule created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 422 {object} errorResponse "Invalid recurrence rule"
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create schedule", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}
	equipmentID, err := uuid.Parse(req.EquipmentID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid equipment ID")
		return
	}

	if !h.authorizeVehicle(c, payload, req.VehicleID) {
		return
	}

	var source domain.ScheduleSource
	switch {
	case req.TemplateID != nil && req.Custom != nil:
		newErrorResponse(c, http.StatusBadRequest, "Provide either template_id or custom, not both")
		return
	case req.TemplateID != nil:
		templateID, err := uuid.Parse(*req.TemplateID)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "Invalid template ID")
			return
		}
		source = domain.LibrarySource(templateID)
	case req.Custom != nil:
		source = domain.CustomSource(*req.Custom)
	default:
		newErrorResponse(c, http.StatusBadRequest, "Provide template_id or custom maintenance data")
		return
	}

	schedule := &domain.MaintenanceSchedule{
		VehicleID:   vehicleID,
		EquipmentID: equipmentID,
		Source:      source,
	}

	created, err := h.scheduleService.CreateSchedule(c.Request.Context(), schedule)
	if err != nil {
		h.logger.Error("Failed to create schedule", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": req.VehicleID,
		})
		if errors.Is(err, domain.ErrInvalidRecurrence) {
			newErrorResponse(c, http.StatusUnprocessableEntity, "Recurrence rule needs at least one trigger")
			return
		}
		newErrorResponse(c, domainErrorStatus(err), "Failed to create schedule")
		return
	}

	c.JSON(http.StatusCreated, toScheduleResponse(created))
}

// @Summary List scored schedules
// @Description List a vehicle's schedules with urgency derived at read time, ranked for display
// @Tags schedules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} ScoredSchedulesResponse "Scored schedules"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id}/schedules [get]
func (h *ScheduleHandler) GetVehicleSchedules(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	vehicleID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.authorizeVehicle(c, payload, vehicleID) {
		return
	}

	id, err := uuid.Parse(vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	scored, err := h.scheduleService.GetScoredSchedules(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get scored schedules", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get schedules")
		return
	}

	items := make([]ScoredScheduleResponse, len(scored))
	for i, s := range scored {
		items[i] = ScoredScheduleResponse{
			ScheduleID:    s.Schedule.ID.String(),
			Name:          s.Maintenance.Name,
			Priority:      string(s.Maintenance.Priority),
			NextDueDate:   s.Projection.NextDueDate,
			NextDueKm:     s.Projection.NextDueKm,
			DaysRemaining: s.Assessment.DaysRemaining,
			KmRemaining:   s.Assessment.KmRemaining,
			Urgency:       s.Assessment.Urgency,
			Status:        string(s.Assessment.Status),
		}
	}

	c.JSON(http.StatusOK, ScoredSchedulesResponse{
		Schedules: items,
		Count:     len(items),
	})
}

// @Summary Complete maintenance
// @Description Record a completion event; the schedule's reference point resets and the next occurrence opens
// @Tags schedules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param request body CompleteScheduleRequest true "Completion event"
// @Success 200 {object} CompleteScheduleResponse "Completion recorded"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Schedule not found"
// @Failure 422 {object} errorResponse "Completion date in the future"
// @Router /schedules/{id}/complete [post]
func (h *ScheduleHandler) CompleteSchedule(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	scheduleID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.authorizeSchedule(c, payload, scheduleID) {
		return
	}

	var req CompleteScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in complete schedule", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	event := domain.CompletionEvent{
		CompletedAt:         req.CompletedAt,
		MileageAtCompletion: req.MileageAtCompletion,
		Cost:                req.Cost,
		Location:            req.Location,
		Notes:               req.Notes,
		Attachments:         req.Attachments,
	}

	schedule, record, err := h.scheduleService.Complete(c.Request.Context(), scheduleID, event)
	if err != nil {
		h.logger.Error("Failed to complete schedule", map[string]interface{}{
			"error":       err.Error(),
			"schedule_id": scheduleID,
		})
		if errors.Is(err, domain.ErrFutureCompletionDate) {
			newErrorResponse(c, http.StatusUnprocessableEntity, "Completion date must not be in the future")
			return
		}
		newErrorResponse(c, domainErrorStatus(err), "Failed to record completion")
		return
	}

	c.JSON(http.StatusOK, CompleteScheduleResponse{
		Schedule: toScheduleResponse(schedule),
		Record:   toRecordInfo(record),
	})
}

// @Summary Completion history
// @Description List a schedule's completion records, newest first
// @Tags schedules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} ScheduleHistoryResponse "Completion records"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Schedule not found"
// @Router /schedules/{id}/history [get]
func (h *ScheduleHandler) GetScheduleHistory(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	scheduleID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.authorizeSchedule(c, payload, scheduleID) {
		return
	}

	records, err := h.scheduleService.GetHistory(c.Request.Context(), scheduleID)
	if err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Failed to get history")
		return
	}

	items := make([]MaintenanceRecordInfo, len(records))
	for i, record := range records {
		items[i] = toRecordInfo(record)
	}

	c.JSON(http.StatusOK, ScheduleHistoryResponse{
		Records: items,
		Count:   len(items),
	})
}

// @Summary Delete schedule
// @Description Delete a schedule; completion history cascades
// @Tags schedules
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} successResponse "Schedule deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Schedule not found"
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	scheduleID := c.Param("id")

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.authorizeSchedule(c, payload, scheduleID) {
		return
	}

	if err := h.scheduleService.DeleteSchedule(c.Request.Context(), scheduleID); err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Failed to delete schedule")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Schedule deleted successfully"})
}

func (h *ScheduleHandler) authorizeVehicle(c *gin.Context, payload *domain.TokenPayload, vehicleID string) bool {
	vehicle, err := h.vehicleService.GetVehicleByID(c.Request.Context(), vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Vehicle not found")
		return false
	}
	if payload.Role != domain.Admin && payload.UserID != vehicle.UserID {
		h.logger.Warn("Access denied to vehicle", map[string]interface{}{
			"requester_id":  payload.UserID.String(),
			"vehicle_owner": vehicle.UserID.String(),
			"vehicle_id":    vehicleID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return false
	}
	return true
}

func (h *ScheduleHandler) authorizeSchedule(c *gin.Context, payload *domain.TokenPayload, scheduleID string) bool {
	schedule, err := h.scheduleService.GetScheduleByID(c.Request.Context(), scheduleID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Schedule not found")
		return false
	}
	return h.authorizeVehicle(c, payload, schedule.VehicleID.String())
}

func toScheduleResponse(schedule *domain.MaintenanceSchedule) ScheduleResponse {
	resp := ScheduleResponse{
		ScheduleID:           schedule.ID.String(),
		VehicleID:            schedule.VehicleID.String(),
		EquipmentID:          schedule.EquipmentID.String(),
		SourceKind:           string(schedule.Source.Kind),
		CreatedAt:            schedule.CreatedAt,
		CreatedMileage:       schedule.CreatedMileage,
		LastCompletedAt:      schedule.LastCompletedAt,
		LastCompletedMileage: schedule.LastCompletedMileage,
	}
	if schedule.Source.TemplateID != nil {
		id := schedule.Source.TemplateID.String()
		resp.TemplateID = &id
	}
	return resp
}

func toRecordInfo(record *domain.MaintenanceRecord) MaintenanceRecordInfo {
	return MaintenanceRecordInfo{
		ID:                  record.ID.String(),
		ScheduleID:          record.ScheduleID.String(),
		CompletedAt:         record.CompletedAt,
		MileageAtCompletion: record.MileageAtCompletion,
		Cost:                record.Cost,
		Location:            record.Location,
		Notes:               record.Notes,
		Attachments:         record.Attachments,
		CreatedAt:           record.CreatedAt,
	}
}
