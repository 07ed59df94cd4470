package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrack/internal/model"
)

type fakeAnnotationStore struct {
	savedURLID      string
	savedUserID     int
	savedHighlights []model.Highlight
	savedDrawings   map[int]json.RawMessage
	saveErr         error

	loadHighlights []model.Highlight
	loadDrawings   map[int]json.RawMessage
}

func (f *fakeAnnotationStore) Save(ctx context.Context, urlID string, userID int, highlights []model.Highlight, drawings map[int]json.RawMessage) error {
	f.savedURLID = urlID
	f.savedUserID = userID
	f.savedHighlights = highlights
	f.savedDrawings = drawings
	return f.saveErr
}

func (f *fakeAnnotationStore) Load(ctx context.Context, urlID string, userID int) ([]model.Highlight, map[int]json.RawMessage, error) {
	return f.loadHighlights, f.loadDrawings, nil
}

func newAnnotationRouter(store AnnotationStore, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAnnotationHandler(store, zap.NewNop())
	authed := r.Group("/")
	if userID != 0 {
		authed.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	}
	authed.POST("/api/literature/save", h.Save)
	authed.POST("/api/literature/load", h.Load)
	return r
}

func TestAnnotationSaveConvertsPageKeys(t *testing.T) {
	store := &fakeAnnotationStore{}
	r := newAnnotationRouter(store, 9)

	w := postJSON(t, r, "/api/literature/save", gin.H{
		"urlId": "9_doc",
		"highlights": []gin.H{
			{"id": "h1", "page": 1, "color": "yellow", "coordinates": gin.H{"x": 1}},
		},
		"pageDrawings": gin.H{
			"2": gin.H{"strokes": []int{}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)

	assert.Equal(t, "9_doc", store.savedURLID)
	assert.Equal(t, 9, store.savedUserID)
	require.Len(t, store.savedHighlights, 1)
	assert.Equal(t, "h1", store.savedHighlights[0].ID)
	require.Contains(t, store.savedDrawings, 2)
}

func TestAnnotationSaveBadPageKeyIs422(t *testing.T) {
	store := &fakeAnnotationStore{}
	r := newAnnotationRouter(store, 9)

	w := postJSON(t, r, "/api/literature/save", gin.H{
		"urlId":        "9_doc",
		"pageDrawings": gin.H{"two": gin.H{}},
	})

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, store.savedURLID, "nothing must be saved on invalid input")
}

func TestAnnotationSaveWithoutUserIs401(t *testing.T) {
	r := newAnnotationRouter(&fakeAnnotationStore{}, 0)

	w := postJSON(t, r, "/api/literature/save", gin.H{"urlId": "x"})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnnotationSaveStoreFailureIs500(t *testing.T) {
	store := &fakeAnnotationStore{saveErr: errors.New("tx aborted")}
	r := newAnnotationRouter(store, 9)

	w := postJSON(t, r, "/api/literature/save", gin.H{"urlId": "9_doc"})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "tx aborted")
}

func TestAnnotationLoadShape(t *testing.T) {
	store := &fakeAnnotationStore{
		loadHighlights: []model.Highlight{
			{ID: "h1", Page: 4, Color: "green", Coordinates: json.RawMessage(`{"x":2}`)},
		},
		loadDrawings: map[int]json.RawMessage{
			3: json.RawMessage(`{"strokes":[1,2]}`),
		},
	}
	r := newAnnotationRouter(store, 9)

	w := postJSON(t, r, "/api/literature/load", gin.H{"urlId": "9_doc"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Highlights   []model.Highlight          `json:"highlights"`
		PageDrawings map[string]json.RawMessage `json:"pageDrawings"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Highlights, 1)
	assert.Equal(t, "h1", resp.Highlights[0].ID)
	require.Contains(t, resp.PageDrawings, "3")
	assert.JSONEq(t, `{"strokes":[1,2]}`, string(resp.PageDrawings["3"]))
}
