package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linklytics/auth"
	"linklytics/config"
	"linklytics/database"
	"linklytics/handlers"
	"linklytics/logger"
	"linklytics/middleware"
	"linklytics/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.IsDev()); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	db, err := database.Connect(&cfg.DB, log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close(db, log)

	if err := database.Migrate(db, log); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	clickService := services.NewClickService(db, log)
	router := buildRouter(cfg, db, clickService, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	// Drain the tracking queue so in-flight clicks are persisted before the
	// database connection closes.
	clickService.Stop()
	log.Info("server exited")
}

func buildRouter(cfg *config.Config, db *gorm.DB, clickService *services.ClickService, log *zap.Logger) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := auth.NewManager(cfg.JWTSecret)
	linkService := services.NewLinkService(db, log)

	authHandler := handlers.NewAuthHandler(db, tokens, log)
	linkHandler := handlers.NewLinkHandler(linkService, clickService)
	redirectHandler := handlers.NewRedirectHandler(linkService, clickService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	api := router.Group("/api")
	api.Use(tokens.Middleware())
	{
		api.GET("/auth/profile", authHandler.Profile)

		api.POST("/links", linkHandler.Create)
		api.GET("/links", linkHandler.List)
		api.GET("/links/:id/analytics", linkHandler.Analytics)
		api.DELETE("/links/:id", linkHandler.Delete)

		api.GET("/dashboard", linkHandler.Dashboard)
	}

	// Public redirect path. Static /api routes win over the code parameter.
	router.GET("/:code", redirectHandler.Redirect)

	return router
}
