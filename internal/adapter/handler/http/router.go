package http

import (
	"net/http"

	"github.com/garagekeep/vehicle-maintenance-service/internal/config"
	"github.com/garagekeep/vehicle-maintenance-service/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	vehicleHandler *VehicleHandler,
	scheduleHandler *ScheduleHandler,
	mileageHandler *MileageHandler,
	templateHandler *TemplateHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthMiddleware(tokenService)
	writeLimit := RateLimitMiddleware(5, 10)

	// Vehicle + equipment routes
	vehicles := router.Group("/vehicles")
	vehicles.Use(auth)
	{
		vehicles.POST("", writeLimit, vehicleHandler.CreateVehicle)
		vehicles.GET("/my", vehicleHandler.GetMyVehicles)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
		vehicles.PUT("/:id", writeLimit, vehicleHandler.UpdateVehicle)
		vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
		vehicles.POST("/:id/equipment", writeLimit, vehicleHandler.AddEquipment)
		vehicles.GET("/:id/equipment", vehicleHandler.GetEquipment)
		vehicles.DELETE("/:id/equipment/:equipmentId", writeLimit, vehicleHandler.RemoveEquipment)
		vehicles.GET("/:id/schedules", scheduleHandler.GetVehicleSchedules)
		vehicles.POST("/:id/mileage", writeLimit, mileageHandler.RecordMileage)
		vehicles.GET("/:id/mileage", mileageHandler.GetMileageHistory)
	}

	// Schedule routes
	schedules := router.Group("/schedules")
	schedules.Use(auth)
	{
		schedules.POST("", writeLimit, scheduleHandler.CreateSchedule)
		schedules.POST("/:id/complete", writeLimit, scheduleHandler.CompleteSchedule)
		schedules.GET("/:id/history", scheduleHandler.GetScheduleHistory)
		schedules.DELETE("/:id", scheduleHandler.DeleteSchedule)
	}

	// Template library routes
	templates := router.Group("/templates")
	templates.Use(auth)
	{
		templates.POST("", writeLimit, templateHandler.CreateTemplate)
		templates.GET("", templateHandler.ListTemplates)
		templates.GET("/:id", templateHandler.GetTemplate)
		templates.PUT("/:id", writeLimit, templateHandler.UpdateTemplate)
		templates.DELETE("/:id", writeLimit, templateHandler.DeleteTemplate)
	}

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
