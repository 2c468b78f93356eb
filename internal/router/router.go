package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/handlers"
	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/middleware"
	"github.com/drivelane/drivelane/internal/models"
	"github.com/drivelane/drivelane/internal/realtime"
	"github.com/drivelane/drivelane/internal/services"
	"github.com/drivelane/drivelane/internal/types"
)

type Dependencies struct {
	DB       *gorm.DB
	Services *services.Services
	Hub      *realtime.Hub

	Scheduler handlers.StatusReporter
	Probe     types.DatabaseConfig

	CookieDomain string
	SecureCookie bool
	TokenTTL     time.Duration
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", types.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", types.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	svc := deps.Services
	requireAuth := middleware.AuthMiddleware(deps.DB)
	ownerOnly := middleware.RequireRoles(models.RoleOwner)
	customerOnly := middleware.RequireRoles(models.RoleCustomer)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	health := handlers.NewHealthHandler(deps.DB, deps.Probe, deps.Scheduler)
	authHandler := handlers.NewAuthHandler(svc.Users, deps.CookieDomain, deps.SecureCookie, deps.TokenTTL)
	cars := handlers.NewCarHandler(svc.Cars, svc.Reviews)
	bookings := handlers.NewBookingHandler(svc.Bookings)
	extensions := handlers.NewExtensionHandler(svc.Extensions)
	notifications := handlers.NewNotificationHandler(svc.Notifications)
	ws := handlers.NewWebSocketHandler(deps.Hub)
	reviews := handlers.NewReviewHandler(svc.Reviews)
	favorites := handlers.NewFavoriteHandler(svc.Favorites)
	messages := handlers.NewMessageHandler(svc.Messages)
	payments := handlers.NewPaymentHandler(svc.Payments)
	emergencies := handlers.NewEmergencyHandler(svc.Emergencies)
	dashboards := handlers.NewDashboardHandler(svc.Dashboards)
	admin := handlers.NewAdminHandler(svc.Users, svc.Cars)

	api := r.Group("/api")
	{
		api.GET("/health", health.HealthCheck)
		api.GET("/health/ready", health.Ready)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.GET("/me", requireAuth, authHandler.Me)
			authGroup.PATCH("/me", requireAuth, authHandler.UpdateMe)
		}

		carGroup := api.Group("/cars")
		{
			carGroup.GET("", cars.List)
			carGroup.GET("/:id", middleware.OptionalAuth(deps.DB), cars.Get)
			carGroup.GET("/:id/reviews", cars.Reviews)
		}

		owner := api.Group("/owner", requireAuth, ownerOnly)
		{
			owner.GET("/cars", cars.ListMine)
			owner.POST("/cars", cars.Create)
			owner.PUT("/cars/:id", cars.Update)
			owner.PATCH("/cars/:id/availability", cars.SetAvailability)
			owner.DELETE("/cars/:id", cars.Delete)

			owner.GET("/bookings", bookings.ListForOwner)
			owner.GET("/dashboard", dashboards.Owner)
			owner.GET("/earnings", dashboards.OwnerEarnings)
			owner.GET("/extensions", extensions.ListPendingForOwner)
			owner.GET("/payments", payments.ListForOwner)
			owner.GET("/emergencies", emergencies.ListForOwner)
		}

		bookingGroup := api.Group("/bookings", requireAuth)
		{
			bookingGroup.POST("", customerOnly, bookings.Create)
			bookingGroup.GET("/mine", bookings.ListMine)
			bookingGroup.GET("/:id", bookings.Get)
			bookingGroup.PATCH("/:id/approve", bookings.Approve())
			bookingGroup.PATCH("/:id/reject", bookings.Reject())
			bookingGroup.PATCH("/:id/cancel", bookings.Cancel())
			bookingGroup.PATCH("/:id/confirm", bookings.Confirm())
			bookingGroup.PATCH("/:id/complete", bookings.Complete())
			bookingGroup.DELETE("/:id", bookings.Delete)

			bookingGroup.POST("/:id/extensions", extensions.Request)
			bookingGroup.GET("/:id/extensions", extensions.ListForBooking)
		}

		extensionGroup := api.Group("/extensions", requireAuth)
		{
			extensionGroup.PATCH("/:id/approve", extensions.Approve())
			extensionGroup.PATCH("/:id/reject", extensions.Reject())
		}

		notificationGroup := api.Group("/notifications", requireAuth)
		{
			notificationGroup.GET("", notifications.List)
			notificationGroup.GET("/unread-count", notifications.UnreadCount)
			notificationGroup.GET("/ws", ws.Serve)
			notificationGroup.PATCH("/read-all", notifications.MarkAllRead)
			notificationGroup.PATCH("/:id/read", notifications.MarkRead)
			notificationGroup.DELETE("/:id", notifications.Delete)

			notificationGroup.PATCH("/:id/extension/approve", extensions.ApproveByNotification())
			notificationGroup.PATCH("/:id/extension/reject", extensions.RejectByNotification())
		}

		reviewGroup := api.Group("/reviews", requireAuth)
		{
			reviewGroup.POST("", customerOnly, reviews.Create)
			reviewGroup.DELETE("/:id", reviews.Delete)
		}

		favoriteGroup := api.Group("/favorites", requireAuth)
		{
			favoriteGroup.GET("", favorites.List)
			favoriteGroup.POST("", favorites.Add)
			favoriteGroup.DELETE("/:carId", favorites.Remove)
		}

		messageGroup := api.Group("/messages", requireAuth)
		{
			messageGroup.POST("", messages.Send)
			messageGroup.GET("/inbox", messages.Inbox)
			messageGroup.GET("/unread-count", messages.UnreadCount)
			messageGroup.GET("/with/:userId", messages.Conversation)
		}

		paymentGroup := api.Group("/payments", requireAuth)
		{
			paymentGroup.POST("", customerOnly, payments.Pay)
			paymentGroup.GET("/mine", payments.ListMine)
		}

		emergencyGroup := api.Group("/emergencies", requireAuth)
		{
			emergencyGroup.POST("", emergencies.Raise)
			emergencyGroup.GET("/mine", emergencies.ListMine)
		}

		adminGroup := api.Group("/admin", requireAuth, adminOnly)
		{
			adminGroup.GET("/dashboard", dashboards.Admin)
			adminGroup.GET("/users", admin.ListUsers)
			adminGroup.PATCH("/users/:id/active", admin.SetUserActive)
			adminGroup.GET("/cars/pending", admin.PendingCars)
			adminGroup.PATCH("/cars/:id/approval", admin.SetCarApproval)
			adminGroup.GET("/bookings", bookings.ListAll)
			adminGroup.GET("/payments", payments.ListAll)
			adminGroup.GET("/emergencies", emergencies.ListAll)
			adminGroup.PATCH("/emergencies/:id/status", emergencies.UpdateStatus)
		}
	}

	return r
}
