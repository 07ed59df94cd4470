package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/service/milestone"
)

// MilestoneSyncer converges stored milestones and tasks to a submitted
// desired state.
type MilestoneSyncer interface {
	Create(ctx context.Context, in milestone.CreateInput) (int, []int, error)
	Update(ctx context.Context, in milestone.UpdateInput) ([]int, error)
	ListByProject(ctx context.Context, projectID int) ([]model.MilestoneDetail, error)
}

type MilestoneHandler struct {
	syncer MilestoneSyncer
	logger *zap.Logger
}

func NewMilestoneHandler(syncer MilestoneSyncer, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{syncer: syncer, logger: logger}
}

type taskPayload struct {
	ID         *int   `json:"id"`
	Name       string `json:"name" binding:"required"`
	Deadline   string `json:"deadline" binding:"required"`
	Priority   string `json:"priority"`
	AssignedTo []int  `json:"assignedTo"`
}

func (t taskPayload) toInput() milestone.TaskInput {
	return milestone.TaskInput{
		ID:         t.ID,
		Name:       t.Name,
		Deadline:   t.Deadline,
		Priority:   t.Priority,
		AssignedTo: t.AssignedTo,
	}
}

// New handles POST /api/milestone/new.
func (h *MilestoneHandler) New(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name      string        `json:"name" binding:"required"`
		Deadline  string        `json:"deadline" binding:"required"`
		ProjectID int           `json:"projectId" binding:"required"`
		Tasks     []taskPayload `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in := milestone.CreateInput{
		Name:      req.Name,
		Deadline:  req.Deadline,
		ProjectID: req.ProjectID,
	}
	for _, t := range req.Tasks {
		in.Tasks = append(in.Tasks, t.toInput())
	}

	milestoneID, taskIDs, err := h.syncer.Create(c.Request.Context(), in)
	if err != nil {
		var verr *milestone.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
			return
		}
		h.logger.Error("Milestone create failed",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.Int("project_id", req.ProjectID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create milestone"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestoneId": milestoneID,
		"taskIds":     taskIDs,
	})
}

// Update handles POST /api/milestone/update.
func (h *MilestoneHandler) Update(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		ID       int           `json:"id" binding:"required"`
		Name     string        `json:"name" binding:"required"`
		Deadline string        `json:"deadline" binding:"required"`
		Tasks    []taskPayload `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	in := milestone.UpdateInput{
		ID:       req.ID,
		Name:     req.Name,
		Deadline: req.Deadline,
	}
	for _, t := range req.Tasks {
		in.Tasks = append(in.Tasks, t.toInput())
	}

	taskIDs, err := h.syncer.Update(c.Request.Context(), in)
	if err != nil {
		var verr *milestone.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": verr.Error()})
			return
		}
		h.logger.Error("Milestone update failed",
			zap.Error(err),
			zap.Int("user_id", userID),
			zap.Int("milestone_id", req.ID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update milestone"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskIds": taskIDs,
	})
}

// Info handles POST /api/milestone/info.
func (h *MilestoneHandler) Info(c *gin.Context) {
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

	milestones, err := h.syncer.ListByProject(c.Request.Context(), req.ProjectID)
	if err != nil {
		h.logger.Error("Milestone info failed", zap.Error(err), zap.Int("project_id", req.ProjectID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch milestones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"milestones": milestones,
	})
}
