package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retrack/internal/model"
)

// StatsProvider aggregates dashboard figures for a user.
type StatsProvider interface {
	ProjectTaskStats(ctx context.Context, userID int) (model.TaskStats, error)
	ProjectPriorityDistribution(ctx context.Context, userID int) ([]model.PriorityCount, error)
	ProjectTimeline(ctx context.Context, userID int) ([]model.TimelineItem, error)
	AssignedTaskStats(ctx context.Context, userID int) (model.TaskStats, error)
	AssignedPriorityDistribution(ctx context.Context, userID int) ([]model.PriorityCount, error)
	AssignedTimeline(ctx context.Context, userID int) ([]model.TimelineItem, error)
	ActiveProjects(ctx context.Context, userID int) (int, error)
	UpcomingDeadlines(ctx context.Context, userID int) ([]model.UpcomingDeadline, error)
	ProjectRoles(ctx context.Context, userID int) ([]model.ProjectRole, error)
}

type StatsHandler struct {
	stats  StatsProvider
	logger *zap.Logger
}

func NewStatsHandler(stats StatsProvider, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// Info handles POST /api/stats/info, aggregating across the user's projects.
func (h *StatsHandler) Info(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	taskStats, err := h.stats.ProjectTaskStats(ctx, userID)
	if err != nil {
		h.logger.Error("Project task stats failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	priorities, err := h.stats.ProjectPriorityDistribution(ctx, userID)
	if err != nil {
		h.logger.Error("Project priority stats failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	timeline, err := h.stats.ProjectTimeline(ctx, userID)
	if err != nil {
		h.logger.Error("Project timeline failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskStats":            taskStats,
		"priorityDistribution": priorities,
		"timeline":             timeline,
	})
}

// UserStats handles POST /api/stats/userstats, scoped to tasks assigned
// to the caller, plus their project memberships and upcoming deadlines.
func (h *StatsHandler) UserStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	taskStats, err := h.stats.AssignedTaskStats(ctx, userID)
	if err != nil {
		h.logger.Error("Assigned task stats failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	activeProjects, err := h.stats.ActiveProjects(ctx, userID)
	if err != nil {
		h.logger.Error("Active project count failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	priorities, err := h.stats.AssignedPriorityDistribution(ctx, userID)
	if err != nil {
		h.logger.Error("Assigned priority stats failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	timeline, err := h.stats.AssignedTimeline(ctx, userID)
	if err != nil {
		h.logger.Error("Assigned timeline failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	deadlines, err := h.stats.UpcomingDeadlines(ctx, userID)
	if err != nil {
		h.logger.Error("Upcoming deadlines failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	roles, err := h.stats.ProjectRoles(ctx, userID)
	if err != nil {
		h.logger.Error("Project roles failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskStats":            taskStats,
		"activeProjects":       activeProjects,
		"priorityDistribution": priorities,
		"timeline":             timeline,
		"upcomingDeadlines":    deadlines,
		"projects":             roles,
	})
}
