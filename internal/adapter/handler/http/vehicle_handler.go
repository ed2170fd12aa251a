package http

import (
	"net/http"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/core/domain"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VehicleHandler struct {
	vehicleService *services.VehicleService
	mileageService *services.MileageService
	logger         ports.LoggerPort
	metrics        ports.MetricsPort
}

func NewVehicleHandler(
	vehicleService *services.VehicleService,
	mileageService *services.MileageService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		mileageService: mileageService,
		logger:         logger,
		metrics:        metrics,
	}
}

type VehicleRequest struct {
	Name  string `json:"name" binding:"required" example:"Daily commuter"`
	Type  string `json:"type" binding:"required" example:"car"`
	Make  string `json:"make,omitempty" example:"Toyota"`
	Model string `json:"model,omitempty" example:"Corolla"`
	Year  int    `json:"year,omitempty" example:"2019"`
}

type VehicleResponse struct {
	VehicleID      string    `json:"vehicle_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Make           string    `json:"make,omitempty"`
	Model          string    `json:"model,omitempty"`
	Year           int       `json:"year,omitempty"`
	CurrentMileage *int      `json:"current_mileage,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type VehicleListResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
	Count    int               `json:"count"`
}

type EquipmentRequest struct {
	Name     string `json:"name" binding:"required" example:"Roof rack"`
	Category string `json:"category,omitempty" example:"carrier"`
	Brand    string `json:"brand,omitempty" example:"Thule"`
	Model    string `json:"model,omitempty" example:"Evo Clamp"`
}

type EquipmentResponse struct {
	EquipmentID string    `json:"equipment_id"`
	VehicleID   string    `json:"vehicle_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	Model       string    `json:"model,omitempty"`
	InstalledAt time.Time `json:"installed_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type EquipmentListResponse struct {
	Equipment []EquipmentResponse `json:"equipment"`
	Count     int                 `json:"count"`
}

// @Summary Register vehicle
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body VehicleRequest true "Vehicle data"
// @Success 201 {object} VehicleResponse "Vehicle created"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in create vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	vehicle := &domain.Vehicle{
		UserID: payload.UserID,
		Name:   req.Name,
		Type:   domain.VehicleType(req.Type),
		Make:   req.Make,
		Model:  req.Model,
		Year:   req.Year,
	}

	created, err := h.vehicleService.CreateVehicle(c.Request.Context(), vehicle)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to create vehicle")
		return
	}

	c.JSON(http.StatusCreated, h.toVehicleResponse(c, created))
}

// @Summary My vehicles
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} VehicleListResponse "Vehicles"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Router /vehicles/my [get]
func (h *VehicleHandler) GetMyVehicles(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicles, err := h.vehicleService.GetVehiclesByUserID(c.Request.Context(), payload.UserID.String())
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get vehicles")
		return
	}

	items := make([]VehicleResponse, len(vehicles))
	for i, vehicle := range vehicles {
		items[i] = h.toVehicleResponse(c, vehicle)
	}

	c.JSON(http.StatusOK, VehicleListResponse{
		Vehicles: items,
		Count:    len(items),
	})
}

// @Summary Get vehicle
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} VehicleResponse "Vehicle"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicle, ok := h.authorizedVehicle(c, payload, c.Param("id"))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.toVehicleResponse(c, vehicle))
}

// @Summary Delete vehicle
// @Description Delete a vehicle; equipment, schedules, history and mileage cascade
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} successResponse "Vehicle deleted"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id} [delete]
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID := c.Param("id")
	if _, ok := h.authorizedVehicle(c, payload, vehicleID); !ok {
		return
	}

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), vehicleID); err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Failed to delete vehicle")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Vehicle deleted successfully"})
}

// @Summary Update vehicle
// @Tags vehicles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param request body VehicleRequest true "Vehicle data"
// @Success 200 {object} VehicleResponse "Vehicle updated"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicle, ok := h.authorizedVehicle(c, payload, c.Param("id"))
	if !ok {
		return
	}

	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in update vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	vehicle.Name = req.Name
	vehicle.Type = domain.VehicleType(req.Type)
	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year

	updated, err := h.vehicleService.UpdateVehicle(c.Request.Context(), vehicle)
	if err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Failed to update vehicle")
		return
	}

	c.JSON(http.StatusOK, h.toVehicleResponse(c, updated))
}

// @Summary Attach equipment
// @Tags equipment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param request body EquipmentRequest true "Equipment data"
// @Success 201 {object} EquipmentResponse "Equipment attached"
// @Failure 400 {object} errorResponse "Invalid request"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Router /vehicles/{id}/equipment [post]
func (h *VehicleHandler) AddEquipment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID := c.Param("id")
	if _, ok := h.authorizedVehicle(c, payload, vehicleID); !ok {
		return
	}

	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed JSON parse in add equipment", map[string]interface{}{
			"error": err.Error(),
		})
		newErrorResponse(c, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	id, err := uuid.Parse(vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	equipment := &domain.Equipment{
		VehicleID: id,
		Name:      req.Name,
		Category:  req.Category,
		Brand:     req.Brand,
		Model:     req.Model,
	}

	created, err := h.vehicleService.AddEquipment(c.Request.Context(), equipment)
	if err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Failed to add equipment")
		return
	}

	c.JSON(http.StatusCreated, EquipmentResponse{
		EquipmentID: created.ID.String(),
		VehicleID:   created.VehicleID.String(),
		Name:        created.Name,
		Category:    created.Category,
		Brand:       created.Brand,
		Model:       created.Model,
		InstalledAt: created.InstalledAt,
		CreatedAt:   created.CreatedAt,
	})
}

// @Summary List equipment
// @Tags equipment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} EquipmentListResponse "Equipment"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle not found"
// @Router /vehicles/{id}/equipment [get]
func (h *VehicleHandler) GetEquipment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID := c.Param("id")
	if _, ok := h.authorizedVehicle(c, payload, vehicleID); !ok {
		return
	}

	equipment, err := h.vehicleService.GetEquipmentByVehicleID(c.Request.Context(), vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to get equipment")
		return
	}

	items := make([]EquipmentResponse, len(equipment))
	for i, item := range equipment {
		items[i] = EquipmentResponse{
			EquipmentID: item.ID.String(),
			VehicleID:   item.VehicleID.String(),
			Name:        item.Name,
			Category:    item.Category,
			Brand:       item.Brand,
			Model:       item.Model,
			InstalledAt: item.InstalledAt,
			CreatedAt:   item.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, EquipmentListResponse{
		Equipment: items,
		Count:     len(items),
	})
}

// @Summary Remove equipment
// @Description Detach equipment from a vehicle; its schedules cascade
// @Tags equipment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param equipmentId path string true "Equipment ID"
// @Success 200 {object} successResponse "Equipment removed"
// @Failure 401 {object} errorResponse "Unauthorized"
// @Failure 403 {object} errorResponse "Access denied"
// @Failure 404 {object} errorResponse "Vehicle or equipment not found"
// @Router /vehicles/{id}/equipment/{equipmentId} [delete]
func (h *VehicleHandler) RemoveEquipment(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	payload, exists := getAuthPayload(c, authorizationPayloadKey)
	if !exists {
		newErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID := c.Param("id")
	if _, ok := h.authorizedVehicle(c, payload, vehicleID); !ok {
		return
	}

	equipmentID := c.Param("equipmentId")
	equipment, err := h.vehicleService.GetEquipmentByVehicleID(c.Request.Context(), vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "Failed to resolve equipment")
		return
	}
	owned := false
	for _, item := range equipment {
		if item.ID.String() == equipmentID {
			owned = true
			break
		}
	}
	if !owned {
		newErrorResponse(c, http.StatusNotFound, "Equipment not found")
		return
	}

	if err := h.vehicleService.RemoveEquipment(c.Request.Context(), equipmentID); err != nil {
		newErrorResponse(c, domainErrorStatus(err), "Failed to remove equipment")
		return
	}

	c.JSON(http.StatusOK, successResponse{Message: "Equipment removed successfully"})
}

func (h *VehicleHandler) authorizedVehicle(c *gin.Context, payload *domain.TokenPayload, vehicleID string) (*domain.Vehicle, bool) {
	vehicle, err := h.vehicleService.GetVehicleByID(c.Request.Context(), vehicleID)
	if err != nil {
		newErrorResponse(c, http.StatusNotFound, "Vehicle not found")
		return nil, false
	}
	if payload.Role != domain.Admin && payload.UserID != vehicle.UserID {
		h.logger.Warn("Access denied to vehicle", map[string]interface{}{
			"requester_id":  payload.UserID.String(),
			"vehicle_owner": vehicle.UserID.String(),
			"vehicle_id":    vehicleID,
		})
		newErrorResponse(c, http.StatusForbidden, "Access denied")
		return nil, false
	}
	return vehicle, true
}

func (h *VehicleHandler) toVehicleResponse(c *gin.Context, vehicle *domain.Vehicle) VehicleResponse {
	current, err := h.mileageService.CurrentMileage(c.Request.Context(), vehicle.ID)
	if err != nil {
		h.logger.Warn("Failed to read current mileage", map[string]interface{}{
			"error":      err.Error(),
			"vehicle_id": vehicle.ID.String(),
		})
		current = nil
	}
	return VehicleResponse{
		VehicleID:      vehicle.ID.String(),
		UserID:         vehicle.UserID.String(),
		Name:           vehicle.Name,
		Type:           string(vehicle.Type),
		Make:           vehicle.Make,
		Model:          vehicle.Model,
		Year:           vehicle.Year,
		CurrentMileage: current,
		CreatedAt:      vehicle.CreatedAt,
		UpdatedAt:      vehicle.UpdatedAt,
	}
}
