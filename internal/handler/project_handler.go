package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/service/project"
)

type ProjectManager interface {
	Create(ctx context.Context, userID int, name, keywords, description string) (int, string, error)
	Join(ctx context.Context, userID int, inviteCode string) (int, error)
	Leave(ctx context.Context, userID, projectID int) error
	List(ctx context.Context, userID int) ([]model.ProjectRef, error)
	Count(ctx context.Context, userID int) (int, error)
	Info(ctx context.Context, projectID int) (*model.Project, error)
	Team(ctx context.Context, projectID int) ([]model.TeamMember, error)
}

type ProjectHandler struct {
	projects ProjectManager
	logger   *zap.Logger
}

func NewProjectHandler(projects ProjectManager, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// New handles POST /api/project/new.
func (h *ProjectHandler) New(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"projectName" binding:"required"`
		Keywords    string `json:"keywords"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	projectID, inviteCode, err := h.projects.Create(c.Request.Context(), userID, req.Name, req.Keywords, req.Description)
	if err != nil {
		h.logger.Error("Project creation failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projectId": projectID, "inviteCode": inviteCode})
}

// Join handles POST /api/project/join.
func (h *ProjectHandler) Join(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		InviteCode string `json:"inviteCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	projectID, err := h.projects.Join(c.Request.Context(), userID, req.InviteCode)
	if errors.Is(err, project.ErrInvalidInviteCode) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid invite code"})
		return
	}
	if err != nil {
		h.logger.Error("Project join failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projectId": projectID})
}

// Leave handles POST /api/project/leave.
func (h *ProjectHandler) Leave(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		ProjectID int `json:"projectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.projects.Leave(c.Request.Context(), userID, req.ProjectID); err != nil {
		h.logger.Error("Project leave failed",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.Int("project_id", req.ProjectID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// List handles POST /api/project/list.
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	refs, err := h.projects.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Project list failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	projects := make([]gin.H, 0, len(refs))
	for _, ref := range refs {
		projects = append(projects, gin.H{"id": ref.ID, "name": ref.Name})
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// Count handles POST /api/project/count.
func (h *ProjectHandler) Count(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	count, err := h.projects.Count(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Project count failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Info handles POST /api/project/info.
func (h *ProjectHandler) Info(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req struct {
		ProjectID int `json:"projectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	p, err := h.projects.Info(c.Request.Context(), req.ProjectID)
	if err != nil {
		h.logger.Error("Project info failed", zap.Error(err), zap.Int("project_id", req.ProjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projectName": p.Name,
		"inviteCode":  p.InviteCode,
		"keywords":    p.Keywords,
		"description": p.Description,
		"createdOn":   p.CreatedOn.Format("2006-01-02"),
	})
}

// Assignees handles POST /api/project/assignees.
func (h *ProjectHandler) Assignees(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req struct {
		ProjectID int `json:"projectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	members, err := h.projects.Team(c.Request.Context(), req.ProjectID)
	if err != nil {
		h.logger.Error("Project team lookup failed", zap.Error(err), zap.Int("project_id", req.ProjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch team"})
		return
	}

	team := make([]gin.H, 0, len(members))
	for _, m := range members {
		team = append(team, gin.H{"userId": m.UserID, "name": m.Name})
	}
	c.JSON(http.StatusOK, gin.H{"team": team})
}
