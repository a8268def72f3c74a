package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/phocus/phocus/internal/config"
	"github.com/phocus/phocus/internal/database"
	"github.com/phocus/phocus/internal/events"
	"github.com/phocus/phocus/internal/handlers"
	"github.com/phocus/phocus/internal/jobs"
	"github.com/phocus/phocus/internal/repository"
	"github.com/phocus/phocus/internal/services"
	"github.com/phocus/phocus/pkg/email"
	"github.com/phocus/phocus/pkg/logger"
	"github.com/phocus/phocus/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	bus := events.NewBus()
	mailer := email.NewSender(cfg)

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	if err := rewardRepo.SeedDefaults(context.Background()); err != nil {
		logger.Log.WithError(err).Warn("Failed to seed reward catalog")
	}

	// --- Services ---
	progression := services.NewProgressionService()
	notificationService := services.NewNotificationService(notificationRepo)
	userService := services.NewUserService(userRepo, mailer)
	goalService := services.NewGoalService(goalRepo, userRepo, groupRepo, progression, notificationService, bus)
	groupService := services.NewGroupService(groupRepo, userRepo, goalRepo, bus)
	rewardService := services.NewRewardService(rewardRepo, userRepo, mailer)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	goalHandler := handlers.NewGoalHandler(goalService)
	groupHandler := handlers.NewGroupHandler(groupService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	eventsHandler := handlers.NewEventsHandler(bus, cfg.JWTSecret)

	// Day-rollover watcher and due-soon scan
	watcher := jobs.NewRolloverWatcher(userRepo, goalService, notificationService, progression, bus)
	watcher.Start()

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Goal routes
	protectedRoutes := router.PathPrefix("/goals").Subrouter()
	protectedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRoutes.HandleFunc("", goalHandler.CreateGoalHandler).Methods("POST")
	protectedRoutes.HandleFunc("", goalHandler.GetGoalsHandler).Methods("GET")
	protectedRoutes.HandleFunc("/{id}", goalHandler.GetGoalHandler).Methods("GET")
	protectedRoutes.HandleFunc("/{id}", goalHandler.UpdateGoalHandler).Methods("PUT")
	protectedRoutes.HandleFunc("/{id}", goalHandler.DeleteGoalHandler).Methods("DELETE")
	protectedRoutes.HandleFunc("/{id}/complete", goalHandler.CompleteGoalHandler).Methods("POST")

	// User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/users/verify", userHandler.VerifyEmailHandler).Methods("GET")
	router.HandleFunc("/users/request-password-reset", userHandler.RequestPasswordResetHandler).Methods("POST")
	router.HandleFunc("/users/reset-password", userHandler.ResetPasswordHandler).Methods("POST")

	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Group routes
	protectedGroupRoutes := router.PathPrefix("/groups").Subrouter()
	protectedGroupRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGroupRoutes.HandleFunc("", groupHandler.CreateGroupHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("", groupHandler.GetMyGroupsHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id}", groupHandler.GetGroupHandler).Methods("GET")
	protectedGroupRoutes.HandleFunc("/{id}/members", groupHandler.AddMemberHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id}/members/{userId}", groupHandler.RemoveMemberHandler).Methods("DELETE")
	protectedGroupRoutes.HandleFunc("/{id}/members/{userId}/admin", groupHandler.ToggleAdminHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id}/goals", groupHandler.AddGoalHandler).Methods("POST")
	protectedGroupRoutes.HandleFunc("/{id}/goals/{goalId}", groupHandler.RemoveGoalHandler).Methods("DELETE")
	protectedGroupRoutes.HandleFunc("/{id}/recompute-xp", groupHandler.RecomputeXPHandler).Methods("POST")

	// Reward routes
	protectedRewardRoutes := router.PathPrefix("/rewards").Subrouter()
	protectedRewardRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRewardRoutes.HandleFunc("", rewardHandler.ListRewardsHandler).Methods("GET")
	protectedRewardRoutes.HandleFunc("/{id}/redeem", rewardHandler.RedeemRewardHandler).Methods("POST")

	// Notification routes
	protectedNotifRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotifRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotifRoutes.HandleFunc("", notificationHandler.GetNotificationsHandler).Methods("GET")
	protectedNotifRoutes.HandleFunc("/{id}/read", notificationHandler.MarkNotificationReadHandler).Methods("POST")

	// Event feed (token passed as query param, not header)
	router.HandleFunc("/ws/events", eventsHandler.EventsWebSocketHandler)

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/goals", goalHandler.GetAllGoalsHandler).Methods("GET")
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
