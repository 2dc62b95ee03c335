// @title           rkive API
// @version         1.0
// @description     Oral defense paperwork generation and manuscript archive
// @BasePath        /api/v1

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"log"

	"rkive-api/config"
	"rkive-api/controllers"
	"rkive-api/docgen"
	_ "rkive-api/docs"
	"rkive-api/middleware"
	"rkive-api/routes"
	"rkive-api/services"
	"rkive-api/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	settings := config.Load()

	logFile, logWriter := config.InitLogging(settings.LogFile)
	if logFile != nil {
		defer logFile.Close()
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	// Initialize database
	config.InitDB()
	config.InitRedis()

	converter, err := docgen.NewConverter(settings.Converter, settings.LibreOfficePath)
	if err != nil {
		log.Fatalf("Failed to set up document converter: %v", err)
	}
	controllers.DocumentConverter = converter

	if settings.SMTPHost != "" {
		controllers.Mailer = config.NewSMTPMailer(settings)
	} else {
		log.Println("SMTP_HOST not set, review notifications disabled")
	}
	controllers.IdentityVerifiers["google"] = services.GoogleVerifier{ClientID: settings.GoogleClientID}

	if _, err := utils.EnsureMediaDirs(settings.MediaRoot); err != nil {
		log.Printf("Warning: Failed to create media directories: %v", err)
	}

	sweeper, err := services.NewGenerationSweeper(config.DB, settings).Start(settings.SweeperSchedule)
	if err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	if settings.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(settings.AllowedOrigins))

	routes.SetupRoutes(router)

	log.Printf("Server starting on port %s", settings.ServerPort)
	log.Printf("Converter: %s, media root: %s, templates: %s", settings.Converter, settings.MediaRoot, settings.TemplateDir)
	if !settings.IsProduction() {
		log.Printf("API documentation available at http://localhost:%s/swagger/index.html", settings.ServerPort)
	}

	if err := router.Run(":" + settings.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
