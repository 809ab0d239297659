package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"fixit-api/controllers"
	db "fixit-api/database"
	"fixit-api/gcs"
	"fixit-api/models"
	"fixit-api/routes"
	"fixit-api/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning Error loading .env file:", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	gcs.InitGCS()
	defer gcs.Close()

	db.InitDB()
	defer db.DisconnectDB()

	// Wire the relay and the transition policy.
	notifStore := models.MongoNotificationStore{}
	pusher := services.NewExpoPusher(models.MongoUserStore{}, logger)
	relay := services.NewRelay(notifStore, pusher, logger)

	policy := services.DefaultPolicy()
	if window := os.Getenv("NOTIF_SUPPRESS_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			log.Fatal("Invalid NOTIF_SUPPRESS_WINDOW:", err)
		}
		policy.SuppressWindow = d
	}
	statusService := services.NewStatusService(models.MongoReportStore{}, relay, policy, logger)

	geocoder := services.NewGeocoder(logger)

	controllers.Init(relay, statusService, geocoder, logger)

	// Sweep unsent notifications so a push missed at login is retried.
	sweepInterval := os.Getenv("NOTIF_SWEEP_INTERVAL")
	if sweepInterval == "" {
		sweepInterval = "10m"
	}
	c := cron.New()
	_, err = c.AddFunc("@every "+sweepInterval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		relay.Sweep(ctx)
	})
	if err != nil {
		log.Fatal("Failed to schedule notification sweep:", err)
	}
	c.Start()
	defer c.Stop()

	r := gin.Default()

	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Starting server on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
