package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitlink/coaching-app/internal/api"
	"fitlink/coaching-app/internal/config"
	"fitlink/coaching-app/internal/repository/mongo"
	"fitlink/coaching-app/internal/service"
	"fitlink/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Coaching Platform API
// @version 1.0
// @description API for the coaching platform: clients, trainers, admins, resources and shared libraries.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Coaching App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureClientIndexes(ctx, appDB.Collection("clients"))
		mongo.EnsureTrainerIndexes(ctx, appDB.Collection("trainers"))
		mongo.EnsureAdminIndexes(ctx, appDB.Collection("admins"))
		mongo.EnsureCatalogIndexes(ctx, appDB)
		mongo.EnsureBookingIndexes(ctx, appDB.Collection("bookings"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	var fileStorage storage.FileStorage
	switch cfg.Storage.Driver {
	case "s3":
		fileStorage, err = storage.NewS3Storage(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
		}
	default:
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.LocalRoot)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize local storage: %v", err)
		}
	}
	uploads := storage.NewGateway(fileStorage)

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	clientRepo := mongo.NewMongoClientRepository(appDB)
	trainerRepo := mongo.NewMongoTrainerRepository(appDB)
	adminRepo := mongo.NewMongoAdminRepository(appDB)
	bookRepo := mongo.NewMongoBookRepository(appDB)
	podcastRepo := mongo.NewMongoPodcastRepository(appDB)
	contentRepo := mongo.NewMongoContentRepository(appDB)
	bookingRepo := mongo.NewMongoBookingRepository(appDB)
	txRunner := mongo.NewTxRunner(dbClient)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(
		clientRepo, trainerRepo, adminRepo,
		cfg.JWT.Secret,
		cfg.JWT.ClientExpiration, cfg.JWT.TrainerExpiration, cfg.JWT.AdminExpiration,
	)
	assignmentService := service.NewAssignmentService(clientRepo, trainerRepo, txRunner)
	trainerService := service.NewTrainerService(trainerRepo, clientRepo, bookingRepo, fileStorage)
	clientService := service.NewClientService(clientRepo, trainerRepo, bookingRepo, fileStorage)
	adminService := service.NewAdminService(clientRepo, trainerRepo, fileStorage)
	catalogService := service.NewCatalogService(bookRepo, podcastRepo, contentRepo, fileStorage)

	// --- Seed Admin Account ---
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdminAccount(seedCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Printf("ERROR: Failed to seed admin account: %v", err)
	}
	cancelSeed()

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, &cfg, authService, assignmentService, trainerService, clientService, adminService, catalogService, uploads)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
