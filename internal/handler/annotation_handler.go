package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retrack/internal/model"
)

// AnnotationStore replaces and loads a user's annotation layer on a
// document.
type AnnotationStore interface {
	Save(ctx context.Context, urlID string, userID int, highlights []model.Highlight, drawings map[int]json.RawMessage) error
	Load(ctx context.Context, urlID string, userID int) ([]model.Highlight, map[int]json.RawMessage, error)
}

type AnnotationHandler struct {
	store  AnnotationStore
	logger *zap.Logger
}

func NewAnnotationHandler(store AnnotationStore, logger *zap.Logger) *AnnotationHandler {
	return &AnnotationHandler{store: store, logger: logger}
}

// Save handles POST /api/literature/save.
func (h *AnnotationHandler) Save(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		URLID        string                     `json:"urlId" binding:"required"`
		Highlights   []model.Highlight          `json:"highlights"`
		PageDrawings map[string]json.RawMessage `json:"pageDrawings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	drawings := make(map[int]json.RawMessage, len(req.PageDrawings))
	for pageStr, data := range req.PageDrawings {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid page number"})
			return
		}
		drawings[page] = data
	}

	if err := h.store.Save(c.Request.Context(), req.URLID, userID, req.Highlights, drawings); err != nil {
		h.logger.Error("Annotation save failed",
			zap.Error(err),
			zap.String("url_id", req.URLID),
			zap.Int("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save annotations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Load handles POST /api/literature/load.
func (h *AnnotationHandler) Load(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req struct {
		URLID string `json:"urlId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	highlights, drawings, err := h.store.Load(c.Request.Context(), req.URLID, userID)
	if err != nil {
		h.logger.Error("Annotation load failed",
			zap.Error(err),
			zap.String("url_id", req.URLID),
			zap.Int("user_id", userID),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load annotations"})
		return
	}

	pageDrawings := make(map[string]json.RawMessage, len(drawings))
	for page, data := range drawings {
		pageDrawings[strconv.Itoa(page)] = data
	}

	c.JSON(http.StatusOK, gin.H{
		"highlights":   highlights,
		"pageDrawings": pageDrawings,
	})
}
