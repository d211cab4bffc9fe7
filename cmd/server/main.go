package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yukikurage/taskboard-api/internal/config"
	"github.com/yukikurage/taskboard-api/internal/database"
	"github.com/yukikurage/taskboard-api/internal/handlers"
	"github.com/yukikurage/taskboard-api/internal/middleware"
	"github.com/yukikurage/taskboard-api/internal/observability"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := observability.InitLogger("taskboard", cfg.LogLevel, cfg.GinMode)
	observability.RegisterMetrics()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	isolation, err := cfg.IsolationLevel()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid isolation level")
	}
	store := repository.NewStore(db,
		repository.WithIsolation(isolation),
		repository.WithRowLocking(cfg.DBDriver != config.DriverSQLite),
	)

	coord := services.NewCoordinator(store, logger, cfg.TxMaxAttempts)
	taskHandler := handlers.NewTaskHandler(services.NewTaskService(store, coord))
	userHandler := handlers.NewUserHandler(services.NewUserService(store, coord))

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RequestMetrics())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Taskboard API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	handlers.RegisterRoutes(r, taskHandler, userHandler)

	// Start server
	logger.Info().Str("addr", cfg.HTTPAddr).Str("driver", cfg.DBDriver).Msg("server starting")
	if err := r.Run(cfg.HTTPAddr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
