package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"retrack/internal/handler"
	"retrack/internal/session"
	"retrack/pkg/metrics"
)

func NewRouter(
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	milestoneHandler *handler.MilestoneHandler,
	taskHandler *handler.TaskHandler,
	annotationHandler *handler.AnnotationHandler,
	literatureHandler *handler.LiteratureHandler,
	statsHandler *handler.StatsHandler,
	jwtSecret string,
	sessions *session.Store,
	db *pgxpool.Pool,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		)
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			latency,
		)
	})

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if err := sessions.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret, sessions))
	{
		auth.POST("/api/auth/logout", authHandler.Logout)

		auth.POST("/api/project/new", projectHandler.New)
		auth.POST("/api/project/join", projectHandler.Join)
		auth.POST("/api/project/leave", projectHandler.Leave)
		auth.POST("/api/project/list", projectHandler.List)
		auth.POST("/api/project/count", projectHandler.Count)
		auth.POST("/api/project/info", projectHandler.Info)
		auth.POST("/api/project/assignees", projectHandler.Assignees)

		auth.POST("/api/milestone/new", milestoneHandler.New)
		auth.POST("/api/milestone/update", milestoneHandler.Update)
		auth.POST("/api/milestone/info", milestoneHandler.Info)

		auth.POST("/api/task/change", taskHandler.Change)

		auth.POST("/api/literature/upload", literatureHandler.Upload)
		auth.POST("/api/literature/info", literatureHandler.Info)
		auth.POST("/api/literature/read", literatureHandler.Read)
		auth.POST("/api/literature/delete", literatureHandler.Delete)
		auth.POST("/api/literature/save", annotationHandler.Save)
		auth.POST("/api/literature/load", annotationHandler.Load)
		auth.GET("/api/literature/pdf/:id", literatureHandler.PDF)

		auth.POST("/api/stats/info", statsHandler.Info)
		auth.POST("/api/stats/userstats", statsHandler.UserStats)
	}

	return r
}
