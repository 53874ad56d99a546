package main

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spge/groundcheck/internal/config"
	"github.com/spge/groundcheck/internal/constants"
	"github.com/spge/groundcheck/internal/handlers"
	"github.com/spge/groundcheck/internal/metrics"
	"github.com/spge/groundcheck/internal/middleware"
	"github.com/spge/groundcheck/internal/report"
	"github.com/spge/groundcheck/internal/repository"
	"github.com/spge/groundcheck/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newSessionStore builds the cookie or Redis session store selected by
// SESSION_STORE.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "redis":
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func setupRouter(cfg *config.Config, db *gorm.DB, store sessions.Store, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.NewLoggingMiddleware(log).LogRequest())
	r.Use(metrics.Middleware())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	foremanRepo := repository.NewForemanRepository(db)
	taskRepo := repository.NewGroundCheckRepository(db)

	// Services
	referenceService := services.NewReferenceService(divisionRepo, foremanRepo,
		services.NewReferenceCache(cfg.ReferenceCacheSize, cfg.ReferenceCacheTTL))
	taskService := services.NewGroundCheckService(taskRepo, referenceService)
	renderer := &report.ProcessRenderer{
		Command: cfg.ReportCommand,
		Timeout: cfg.ReportTimeout,
		Log:     log.Named("report"),
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(services.NewAuthService(userRepo))
	userHandler := handlers.NewUserHandler(services.NewUserService(userRepo, divisionRepo))
	referenceHandler := handlers.NewReferenceHandler(referenceService)
	taskHandler := handlers.NewGroundCheckHandler(taskService)
	reportHandler := handlers.NewReportHandler(services.NewReportService(renderer, referenceService, log))
	initHandler := handlers.NewInitHandler(services.NewSeedService(userRepo, divisionRepo, foremanRepo), log)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "SGS Ground Check API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/init", initHandler.Status)
		api.POST("/init", initHandler.Seed)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User management (admin)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		// Reference data: read for everyone signed in, write for admins
		divisions := api.Group("/divisions")
		divisions.Use(middleware.RequireAuth())
		{
			divisions.GET("", referenceHandler.ListDivisions)
			divisions.POST("", middleware.RequireAdmin(), referenceHandler.CreateDivision)
			divisions.DELETE("/:id", middleware.RequireAdmin(), referenceHandler.DeleteDivision)
		}

		foremen := api.Group("/foremen")
		foremen.Use(middleware.RequireAuth())
		{
			foremen.GET("", referenceHandler.ListForemen)
			foremen.POST("", middleware.RequireAdmin(), referenceHandler.CreateForeman)
			foremen.DELETE("/:id", middleware.RequireAdmin(), referenceHandler.DeleteForeman)
		}

		// Ground check routes (protected)
		tasks := api.Group("/groundcheck")
		tasks.Use(middleware.RequireAuth())
		{
			requireTask := middleware.RequireTask(taskService, services.ErrTaskNotFound)
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", requireTask, taskHandler.GetTask)
			tasks.PUT("/:id/signature", requireTask, taskHandler.UpdateSignature)
			tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
		}

		api.POST("/generate-pdf", middleware.RequireAuth(), reportHandler.GeneratePDF)
	}

	return r
}
