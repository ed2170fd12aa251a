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

type MileageHandler struct {
	mileageService *services.MileageService
	vehicleService *services.VehicleService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

func NewMileageHandler(
	mileageService *services.MileageService,
	vehicleService *services.VehicleService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *MileageHandler {
	return &MileageHandler{
		mileageService: mileageService,
		vehicleService: vehicleService,
		logger:         logger,
		metrics:        metrics,
	}
}

type RecordMileageRequest struct {
	Mileage *int `json:"mileage" binding:"required" example:"12500"`
}

type RecordMileageResponse struct {
	EntryID    string    `json:"entry_id"`
	VehicleID  string    `json:"vehicle_id"`
	Mileage    int       `json:"mileage"`
	RecordedAt time.Time `json:"recorded_at"`
}

type MileageRejectedResponse struct {
	CanUpdate           bool      `json:"can_update"`
	NextUpdateAvailable time.Time `json:"next_update_available"`
}

type MileageEntryInfo struct {
	EntryID    string    `json:"entry_id"`
	Mileage    int       `json:"mileage"`
	RecordedAt time.Time `json:"recorded_at"`
}

type MileageHistoryResponse struct {
	VehicleID      string             `json:"vehicle_id"`
	CurrentMileage *int               `json:"current_mileage,omitempty"`
	Entries        []MileageEntryInfo `json:"entries"`
	Count          int                `json:"count"`
}

// @Summary Record mileage
// @Description Append an odometer reading; rejected inside the 2-hour cooldown window
// @Tags mileage
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param request body RecordMileageRequest true "Odometer reading"
// @Success 201 {object} RecordMileageResponse "Mileage recorded"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 429 {object} MileageRejectedResponse "Inside cooldown window"
// @Router /vehicles/{id}/mileage [post]
func (h *MileageHandler) RecordMileage(c *gin.Context) {
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

	var req RecordMileageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in record mileage", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if *req.Mileage < 0 {
		newErrorResponse(c, http.StatusBadRequest, "Mileage must not be negative")
		return
	}

	id, err := uuid.Parse(vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	entry, err := h.mileageService.RecordMileage(c.Request.Context(), id, *req.Mileage)
	if err != nil {
		var rateLimited *domain.RateLimitedError
		if errors.As(err, &rateLimited) {
			c.JSON(http.StatusTooManyRequests, MileageRejectedResponse{
				CanUpdate:           false,
				NextUpdateAvailable: rateLimited.NextUpdateAvailable,
			})
			return
		}
		h.logger.Error("Failed to record mileage", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicleID,
		})
		newErrorResponse(c, domainErrorStatus(err), "Failed to record mileage")
		return
	}

	c.JSON(http.StatusCreated, RecordMileageResponse{
		EntryID:    entry.ID.String(),
		VehicleID:  entry.VehicleID.String(),
		Mileage:    entry.Mileage,
		RecordedAt: entry.RecordedAt,
	})
}

// @Summary Mileage history
// @Description List a vehicle's odometer readings, newest first
// @Tags mileage
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} MileageHistoryResponse "Mileage entries"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id}/mileage [get]
func (h *MileageHandler) GetMileageHistory(c *gin.Context) {
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

	entries, err := h.mileageService.GetMileageHistory(c.Request.Context(), id, 100)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get mileage history")
		return
	}

	current, err := h.mileageService.CurrentMileage(c.Request.Context(), id)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get current mileage")
		return
	}

	items := make([]MileageEntryInfo, len(entries))
	for i, entry := range entries {
		items[i] = MileageEntryInfo{
			EntryID:    entry.ID.String(),
			Mileage:    entry.Mileage,
			RecordedAt: entry.RecordedAt,
		}
	}

	c.JSON(http.StatusOK, MileageHistoryResponse{
		VehicleID:      vehicleID,
		CurrentMileage: current,
		Entries:        items,
		Count:          len(items),
	})
}

func (h *MileageHandler) authorizeVehicle(c *gin.Context, payload *domain.TokenPayload, vehicleID string) bool {
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
