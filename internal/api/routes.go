package api

import (
	"net/http"
	"time"

	"fitlink/coaching-app/internal/config"
	"fitlink/coaching-app/internal/domain"
	"fitlink/coaching-app/internal/service"
	"fitlink/coaching-app/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every endpoint onto the router. Each role has its own
// auth group; the shared catalog routes are mounted under both the client
// and the admin groups.
func SetupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authService service.AuthService,
	assignmentService service.AssignmentService,
	trainerService service.TrainerService,
	clientService service.ClientService,
	adminService service.AdminService,
	catalogService service.CatalogService,
	uploads *storage.Gateway,
) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authHandler := NewAuthHandler(authService, uploads)
	clientHandler := NewClientHandler(clientService, assignmentService)
	trainerHandler := NewTrainerHandler(trainerService, catalogService, uploads)
	adminHandler := NewAdminHandler(adminService, catalogService, uploads)
	catalogHandler := NewCatalogHandler(catalogService)

	clientAuth := AuthMiddleware(cfg.JWT.Secret, authService, domain.RoleClient)
	trainerAuth := AuthMiddleware(cfg.JWT.Secret, authService, domain.RoleTrainer)
	adminAuth := AdminAuthMiddleware(cfg.JWT.Secret, cfg.Admin.StaticToken, authService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/client/register", authHandler.RegisterClient)
		authGroup.POST("/client/login", authHandler.LoginClient)
		authGroup.POST("/trainer/register", authHandler.RegisterTrainer)
		authGroup.POST("/trainer/login", authHandler.LoginTrainer)
		authGroup.POST("/admin/login", authHandler.LoginAdmin)
	}

	clientGroup := apiV1.Group("/client")
	clientGroup.Use(clientAuth)
	{
		clientGroup.GET("/me", clientHandler.GetMyProfile)
		clientGroup.GET("/trainers", clientHandler.GetAvailableTrainers)
		clientGroup.POST("/trainer/assign", clientHandler.AssignTrainer)
		clientGroup.POST("/trainers/:trainerId/connect", clientHandler.ConnectTrainer)
		clientGroup.GET("/trainer", clientHandler.GetCurrentTrainer)
		clientGroup.GET("/resources", clientHandler.GetMyResources)
		clientGroup.GET("/resources/:resourceId/file", clientHandler.DownloadResourceFile)
		clientGroup.POST("/bookings", clientHandler.CreateBooking)
		clientGroup.GET("/bookings", clientHandler.GetMyBookings)

		// Shared libraries, client view.
		clientGroup.GET("/books", catalogHandler.GetBooks)
		clientGroup.GET("/books/:bookId/file", catalogHandler.DownloadBook)
		clientGroup.GET("/podcasts", catalogHandler.GetPodcasts)
		clientGroup.GET("/podcasts/:podcastId/file", catalogHandler.DownloadPodcast)
		clientGroup.GET("/content", catalogHandler.GetAllContent)
	}

	trainerGroup := apiV1.Group("/trainer")
	trainerGroup.Use(trainerAuth)
	{
		trainerGroup.GET("/me", trainerHandler.GetMyProfile)
		trainerGroup.POST("/approval-request", trainerHandler.SendApprovalRequest)
		trainerGroup.GET("/clients", trainerHandler.GetMyClients)
		trainerGroup.GET("/clients/:clientId/resources", trainerHandler.GetClientResources)
		trainerGroup.GET("/bookings", trainerHandler.GetMyBookings)
		trainerGroup.POST("/resources", trainerHandler.AddResource)
		trainerGroup.GET("/resources", trainerHandler.GetMyResources)
		trainerGroup.GET("/resources/:resourceId/file", trainerHandler.DownloadResourceFile)
		trainerGroup.DELETE("/resources/:resourceId", trainerHandler.DeleteResource)
		trainerGroup.POST("/content", trainerHandler.AddContent)
		trainerGroup.GET("/content", trainerHandler.GetMyContent)
		trainerGroup.DELETE("/content/:contentId", trainerHandler.DeleteContent)
	}

	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(adminAuth)
	{
		adminGroup.GET("/clients", adminHandler.GetClients)
		adminGroup.GET("/trainer-requests", adminHandler.GetTrainerRequests)
		adminGroup.POST("/trainer-requests/:trainerId/approve", adminHandler.ApproveTrainer)
		adminGroup.POST("/trainer-requests/:trainerId/reject", adminHandler.RejectTrainer)
		adminGroup.GET("/trainer-requests/:trainerId/certificate", adminHandler.DownloadTrainerCertificate)

		adminGroup.POST("/books", adminHandler.AddBook)
		adminGroup.DELETE("/books/:bookId", adminHandler.DeleteBook)
		adminGroup.POST("/podcasts", adminHandler.AddPodcast)
		adminGroup.DELETE("/podcasts/:podcastId", adminHandler.DeletePodcast)

		// Shared libraries, admin view.
		adminGroup.GET("/books", catalogHandler.GetBooks)
		adminGroup.GET("/podcasts", catalogHandler.GetPodcasts)
		adminGroup.GET("/content", catalogHandler.GetAllContent)
	}
}
