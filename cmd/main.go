package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garagekeep/vehicle-maintenance-service/internal/app"
	"github.com/garagekeep/vehicle-maintenance-service/internal/config"

	_ "github.com/lib/pq"
)

// @title Vehicle Maintenance Service API
// @version 1.0
// @description Maintenance scheduling and urgency tracking for vehicles and their equipment

// @host localhost:8082
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Loading environment
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Create app
	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	go application.Run()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := application.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop app: %v", err)
	}
}
