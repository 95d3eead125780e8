package main

import (
	"fmt"
	"log"

	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/config"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/handlers"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/repository"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/internal/services"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/pkg/database"
	"github.com/Sistemas-Internet-2-FURG/Pedro-Nunes-149349/pkg/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.NewWithFile(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db.DB)
	relRepo := repository.NewRelationshipRepository(db.DB)
	presRepo := repository.NewPresenceRepository(db.DB)

	chamadaService := services.NewChamadaService(userRepo, relRepo, presRepo, appLog)
	authService := services.NewAuthService(cfg.JWTSecret, cfg.TokenTTL)

	apiHandler := handlers.NewAPIHandler(chamadaService, authService)
	webHandler := handlers.NewWebHandler(chamadaService)

	router := gin.Default()
	router.Use(handlers.CORSMiddleware())
	router.Use(sessions.Sessions("chamada_session", cookie.NewStore([]byte(cfg.SessionSecret))))
	router.LoadHTMLGlob("web/templates/*")

	// Rendered surface
	router.GET("/", webHandler.Home)
	router.GET("/user/:username", webHandler.User)
	router.GET("/about", webHandler.About)
	router.GET("/login", webHandler.LoginPage)
	router.POST("/login", webHandler.Login)
	router.GET("/signin", webHandler.SigninPage)
	router.POST("/signin", webHandler.Signin)

	web := router.Group("/")
	web.Use(handlers.SessionAuthMiddleware())
	{
		web.GET("/chamada", webHandler.Chamada)
		web.POST("/chamada", webHandler.Chamada)
		web.POST("/chamada/:nome", webHandler.RemoveRelationship)
		web.POST("/presenca/:nome", webHandler.RecordPresence)
	}

	// JSON API surface
	api := router.Group("/api")
	{
		api.GET("", apiHandler.Home)
		api.GET("/user/:username", apiHandler.User)
		api.GET("/about", apiHandler.About)
		api.POST("/login", apiHandler.Login)
		api.POST("/signin", apiHandler.Signin)

		protected := api.Group("/")
		protected.Use(handlers.TokenAuthMiddleware(authService))
		{
			protected.GET("/chamada", apiHandler.Chamada)
			protected.POST("/chamada", apiHandler.Chamada)
			protected.DELETE("/chamada", apiHandler.Chamada)
			protected.DELETE("/chamada/:nome", apiHandler.RemoveRelationship)
			protected.POST("/presenca/:nome/:matricula", apiHandler.RecordPresence)
		}
	}

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	appLog.Infof("starting chamada server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
