package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/service/literature"
)

type LiteratureManager interface {
	Upload(ctx context.Context, userID int, in literature.UploadInput) (*model.Literature, error)
	ListByUser(ctx context.Context, userID int) ([]model.Literature, error)
	ToggleRead(ctx context.Context, urlID string) error
	Delete(ctx context.Context, urlID string) error
	StreamPDF(ctx context.Context, urlID string) (io.ReadCloser, error)
}

type LiteratureHandler struct {
	literature LiteratureManager
	logger     *zap.Logger
}

func NewLiteratureHandler(lit LiteratureManager, logger *zap.Logger) *LiteratureHandler {
	return &LiteratureHandler{literature: lit, logger: logger}
}

// Upload handles POST /api/literature/upload. The body is a multipart form:
// an arXiv import carries an arxivId field, a manual upload carries the PDF
// file plus title and authors fields.
func (h *LiteratureHandler) Upload(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	in := literature.UploadInput{
		Source:     c.PostForm("source"),
		Title:      c.PostForm("title"),
		Authors:    c.PostForm("authors"),
		ArxivID:    c.PostForm("arxivId"),
		Read:       c.PostForm("read") == "true",
		UploadDate: time.Now(),
	}

	if in.ArxivID == "" {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
			return
		}
		f, err := fileHeader.Open()
		if err != nil {
			h.logger.Error("Upload file open failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}
		defer f.Close()
		in.File = f
		in.Size = fileHeader.Size
	}

	lit, err := h.literature.Upload(c.Request.Context(), userID, in)
	if err != nil {
		h.logger.Error("Literature upload failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload literature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":   lit.Title,
		"authors": lit.Authors,
		"urlId":   lit.URLID,
		"status":  "success",
	})
}

// Info handles POST /api/literature/info.
func (h *LiteratureHandler) Info(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.literature.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Literature list failed", zap.Error(err), zap.Int("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch literature"})
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"urlId":      item.URLID,
			"title":      item.Title,
			"authors":    item.Authors,
			"source":     item.Source,
			"read":       item.Read,
			"uploadDate": item.UploadDate.Format("2006-01-02"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"literature": out})
}

// Read handles POST /api/literature/read, toggling the read flag.
func (h *LiteratureHandler) Read(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req struct {
		URLID string `json:"urlId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.literature.ToggleRead(c.Request.Context(), req.URLID); err != nil {
		h.logger.Error("Literature read toggle failed", zap.Error(err), zap.String("url_id", req.URLID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update literature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Delete handles POST /api/literature/delete.
func (h *LiteratureHandler) Delete(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	var req struct {
		URLID string `json:"urlId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.literature.Delete(c.Request.Context(), req.URLID); err != nil {
		h.logger.Error("Literature delete failed", zap.Error(err), zap.String("url_id", req.URLID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete literature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// PDF handles GET /api/literature/pdf/:id, streaming the stored document.
func (h *LiteratureHandler) PDF(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		return
	}

	urlID := c.Param("id")
	rc, err := h.literature.StreamPDF(c.Request.Context(), urlID)
	if err != nil {
		h.logger.Error("PDF stream failed", zap.Error(err), zap.String("url_id", urlID))
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("PDF stream interrupted", zap.Error(err), zap.String("url_id", urlID))
	}
}
