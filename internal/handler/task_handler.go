package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retrack/internal/repository"
)

type TaskHandler struct {
	tasks  *repository.TaskRepository
	logger *zap.Logger
}

func NewTaskHandler(tasks *repository.TaskRepository, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// Change handles POST /api/task/change, toggling a task's completion flag.
func (h *TaskHandler) Change(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req struct {
		TaskID    int   `json:"taskId" binding:"required"`
		Completed *bool `json:"completed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.tasks.SetCompleted(c.Request.Context(), req.TaskID, *req.Completed); err != nil {
		h.logger.Error("Task completion update failed", zap.Error(err), zap.Int("task_id", req.TaskID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
