package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jpark/addressbook-backend/config"
	"github.com/jpark/addressbook-backend/internal/app/controller"
	"github.com/jpark/addressbook-backend/internal/app/model"
	"github.com/jpark/addressbook-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	addressController *controller.AddressController
	exportController  *controller.ExportController
	eventsController  *controller.EventsController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	addressController *controller.AddressController,
	exportController *controller.ExportController,
	eventsController *controller.EventsController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		addressController: addressController,
		exportController:  exportController,
		eventsController:  eventsController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

// Setup builds the HTTP route tree. Reads and distance search are public;
// mutations require authentication and exports require the admin role.
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Address Book API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		addresses := v1.Group("/addresses")
		{
			addresses.GET("", r.addressController.ListAddresses)
			addresses.POST("/search", r.addressController.SearchByDistance)

			addresses.GET("/export",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.exportController.ExportAddresses,
			)

			addresses.GET("/:id", r.addressController.GetAddress)

			addresses.POST("",
				r.authMiddleware.Authenticate(),
				r.addressController.CreateAddress,
			)
			addresses.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.addressController.UpdateAddress,
			)
			addresses.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.addressController.DeleteAddress,
			)
		}

		// Change feed. Browsers cannot set headers on WebSocket handshakes,
		// so the auth middleware also accepts a token query parameter.
		v1.GET("/ws/addresses",
			r.authMiddleware.Authenticate(),
			r.eventsController.Subscribe,
		)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
