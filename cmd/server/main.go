package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"retrack/internal/config"
	"retrack/internal/handler"
	"retrack/internal/httpserver"
	"retrack/internal/repository"
	"retrack/internal/service/annotation"
	"retrack/internal/service/auth"
	"retrack/internal/service/literature"
	"retrack/internal/service/milestone"
	"retrack/internal/service/project"
	"retrack/internal/session"
	"retrack/internal/storage"
	"retrack/pkg/db"
	"retrack/pkg/logger"
	"retrack/pkg/redis"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting retrack...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.String("blob_endpoint", cfg.Blob.Endpoint),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	if cfg.DB.MigrationsDir != "" {
		migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.ApplyMigrations(migrateCtx, dbConn, cfg.DB.MigrationsDir); err != nil {
			migrateCancel()
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		migrateCancel()
		log.Info("Migrations applied")
	}

	// Redis sessions
	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()
	sessions := session.NewStore(redisClient)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := sessions.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal("Failed to reach Redis", zap.Error(err))
	}
	pingCancel()
	log.Info("Redis connection established successfully")

	// Blob store
	blobCtx, blobCancel := context.WithTimeout(context.Background(), 10*time.Second)
	blobs, err := storage.NewBlobStore(blobCtx, cfg.Blob, log)
	blobCancel()
	if err != nil {
		log.Fatal("Failed to init blob store", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	literatureRepo := repository.NewLiteratureRepository(dbConn, log)
	annotationRepo := repository.NewAnnotationRepository(dbConn, log)
	statsRepo := repository.NewStatsRepository(dbConn, log)

	// Services
	tokenTTL := time.Duration(cfg.JWT.TTLSeconds) * time.Second
	authService := auth.NewService(userRepo, sessions, cfg.JWT.Secret, tokenTTL)
	projectService := project.NewService(projectRepo, log)
	milestoneService := milestone.NewService(dbConn, milestoneRepo, taskRepo, literatureRepo, log)
	annotationService := annotation.NewService(dbConn, annotationRepo, log)
	literatureService := literature.NewService(literatureRepo, blobs, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	milestoneHandler := handler.NewMilestoneHandler(milestoneService, log)
	taskHandler := handler.NewTaskHandler(taskRepo, log)
	annotationHandler := handler.NewAnnotationHandler(annotationService, log)
	literatureHandler := handler.NewLiteratureHandler(literatureService, log)
	statsHandler := handler.NewStatsHandler(statsRepo, log)

	router := httpserver.NewRouter(
		authHandler,
		projectHandler,
		milestoneHandler,
		taskHandler,
		annotationHandler,
		literatureHandler,
		statsHandler,
		cfg.JWT.Secret,
		sessions,
		dbConn,
		log,
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("retrack is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down retrack gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("Closing database connection...")
	dbConn.Close()

	log.Info("retrack shutdown complete")
}
