package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	api "modak-backend/cmd/api"
	eventsDelivery "modak-backend/internal/events/delivery"
	maintenanceScheduler "modak-backend/internal/maintenance/scheduler"
	maintenanceUsecase "modak-backend/internal/maintenance/usecase"
	notifRepo "modak-backend/internal/notification/repository"
	notifUsecase "modak-backend/internal/notification/usecase"
	socialRepo "modak-backend/internal/social/repository"
	socialUsecase "modak-backend/internal/social/usecase"
	"modak-backend/pkg/config"
	"modak-backend/pkg/fcm"
	"modak-backend/pkg/firestoredb"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.GoogleProjectID == "" {
		log.Fatal("GOOGLE_PROJECT_ID not configured")
	}

	// Initialize the shared Firestore client (constructed once, passed by
	// reference to every repository)
	firestoreClient, err := firestoredb.NewClient(context.Background(), cfg.GoogleProjectID, cfg.GoogleCredentials)
	if err != nil {
		log.Fatal("Failed to connect to Firestore:", err)
	}
	defer firestoreClient.Close()

	// Initialize FCM client (optional: without it notifications are still
	// recorded and synced, push dispatch is disabled)
	var pushSender notifUsecase.PushSender
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			pushSender = fcmClient
		}
	} else {
		log.Printf("[WARN] No Firebase credentials configured, push notifications disabled")
	}

	// Initialize repositories (dependency injection)
	userRepo := socialRepo.NewUserRepository(firestoreClient)
	postRepo := socialRepo.NewPostRepository(firestoreClient)
	groupRepo := socialRepo.NewGroupRepository(firestoreClient)
	activityRepo := socialRepo.NewActivityRepository(firestoreClient)
	tokenRepo := notifRepo.NewTokenRepository(firestoreClient)
	notificationRepo := notifRepo.NewNotificationRepository(firestoreClient)

	// Initialize use cases
	notify := notifUsecase.NewNotifyUsecase(userRepo, postRepo, tokenRepo, notificationRepo, pushSender)
	syncer := socialUsecase.NewSyncUsecase(userRepo, postRepo, groupRepo, notificationRepo)
	cleanup := socialUsecase.NewCleanupUsecase(userRepo, postRepo, groupRepo, tokenRepo, notificationRepo)

	loc, err := time.LoadLocation(cfg.SchedulerTimezone)
	if err != nil {
		log.Fatal("Invalid scheduler timezone:", err)
	}
	purge := maintenanceUsecase.NewPurgeUsecase(userRepo, tokenRepo, notificationRepo)
	streaks := maintenanceUsecase.NewStreakUsecase(userRepo, activityRepo, loc)
	attendance := maintenanceUsecase.NewAttendanceUsecase(groupRepo, loc)

	// Start the domain-event consumer
	consumer, err := eventsDelivery.NewConsumer(cfg.GoogleProjectID, cfg.EventsTopic, notify, syncer, cleanup, cfg.GoogleCredentials)
	if err != nil {
		log.Fatal("Failed to initialize event consumer:", err)
	}
	go consumer.Start(context.Background())

	// Start the maintenance scheduler
	if cfg.SchedulerEnabled {
		sched := maintenanceScheduler.NewMaintenanceScheduler(loc, purge, streaks, attendance)
		if err := sched.Start(); err != nil {
			log.Fatal("Failed to start scheduler:", err)
		}
		defer sched.Stop()
	} else {
		log.Printf("[WARN] Scheduler disabled by configuration")
	}

	// Start the ops server
	router := gin.Default()
	api.SetupRoutes(router, purge, streaks, attendance)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
