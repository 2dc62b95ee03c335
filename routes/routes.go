package routes

import (
	"net/http"

	"rkive-api/config"
	"rkive-api/controllers"
	"rkive-api/middleware"
	"rkive-api/models"
	"rkive-api/monitor"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(router *gin.Engine) {
	monitor.RegisterMonitorPage(router)
	monitor.RegisterLogsRoute(router)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Generated PDFs and uploaded manuscripts
	router.Static(config.Current.MediaURL, config.Current.MediaRoot)

	staff := middleware.RequireRole(models.RoleStaff)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/jwt/create", controllers.CreateToken)
			public.POST("/jwt/refresh", controllers.RefreshToken)
			public.POST("/jwt/verify", controllers.VerifyToken)
			public.POST("/logout", controllers.Logout)
			public.POST("/o/:provider", controllers.ProviderAuth)
			public.POST("/register", controllers.Register)
			public.POST("/users/reset_password", controllers.ForgotPassword)
			public.POST("/users/reset_password_confirm", controllers.ResetPassword)

			public.GET("/manuscripts", controllers.ListManuscripts)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				status := "degraded"
				if config.DB != nil {
					if sqlDB, err := config.DB.DB(); err == nil && sqlDB.Ping() == nil {
						status = "ok"
					}
				}
				c.JSON(http.StatusOK, gin.H{
					"status":  status,
					"message": "rkive API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/user-role", controllers.UserRole)
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			protected.GET("/document-count", controllers.DocumentCount)
			protected.GET("/list-files", controllers.ListDocumentFiles)

			documents := protected.Group("/documents")
			{
				documents.POST("/application", controllers.GenerateApplication)
				documents.POST("/panel", controllers.GeneratePanel)
				documents.GET("/jobs/:id", controllers.GetGenerationJob)
			}

			protected.POST("/manuscripts", controllers.SubmitManuscript)

			protected.GET("/faculty", controllers.ListFaculty)
			protected.POST("/faculty", staff, controllers.CreateFaculty)
			protected.DELETE("/faculty/:id", staff, controllers.DeleteFaculty)

			reviews := protected.Group("/reviews")
			{
				reviews.GET("", controllers.ListReviews)
				reviews.GET("/:id", controllers.GetReview)
				reviews.POST("", staff, controllers.CreateReview)
				reviews.PATCH("/:id", staff, controllers.UpdateReview)
				reviews.DELETE("/:id", staff, controllers.DeleteReview)
			}

			// Staff only
			accounts := protected.Group("/accounts", staff)
			{
				accounts.GET("", controllers.ListAccounts)
				accounts.POST("", controllers.CreateAccount)
				accounts.GET("/:id", controllers.GetAccount)
				accounts.PUT("/:id", controllers.UpdateAccount)
				accounts.PATCH("/:id", controllers.UpdateAccount)
				accounts.DELETE("/:id", controllers.DeleteAccount)
			}

			admin := protected.Group("/admin", staff)
			{
				admin.POST("/templates/:kind/revision", controllers.PatchTemplateRevision)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
