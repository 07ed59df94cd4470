package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrack/internal/model"
	"retrack/internal/service/project"
)

type fakeProjectManager struct {
	joinErr    error
	joinedID   int
	joinedCode string
	info       *model.Project
	team       []model.TeamMember
}

func (f *fakeProjectManager) Create(ctx context.Context, userID int, name, keywords, description string) (int, string, error) {
	return 1, "abcdef0123456789", nil
}

func (f *fakeProjectManager) Join(ctx context.Context, userID int, inviteCode string) (int, error) {
	f.joinedCode = inviteCode
	return f.joinedID, f.joinErr
}

func (f *fakeProjectManager) Leave(ctx context.Context, userID, projectID int) error { return nil }

func (f *fakeProjectManager) List(ctx context.Context, userID int) ([]model.ProjectRef, error) {
	return []model.ProjectRef{{ID: 1, Name: "alpha"}}, nil
}

func (f *fakeProjectManager) Count(ctx context.Context, userID int) (int, error) { return 1, nil }

func (f *fakeProjectManager) Info(ctx context.Context, projectID int) (*model.Project, error) {
	return f.info, nil
}

func (f *fakeProjectManager) Team(ctx context.Context, projectID int) ([]model.TeamMember, error) {
	return f.team, nil
}

func newProjectRouter(pm ProjectManager, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewProjectHandler(pm, zap.NewNop())
	authed := r.Group("/")
	if userID != 0 {
		authed.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	}
	authed.POST("/api/project/new", h.New)
	authed.POST("/api/project/join", h.Join)
	authed.POST("/api/project/info", h.Info)
	authed.POST("/api/project/assignees", h.Assignees)
	return r
}

func TestProjectNewReturnsInviteCode(t *testing.T) {
	r := newProjectRouter(&fakeProjectManager{}, 5)

	w := postJSON(t, r, "/api/project/new", gin.H{"projectName": "alpha"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"inviteCode"`)
	assert.Contains(t, w.Body.String(), `"projectId"`)
}

func TestProjectNewRequiresProjectName(t *testing.T) {
	r := newProjectRouter(&fakeProjectManager{}, 5)

	w := postJSON(t, r, "/api/project/new", gin.H{"name": "alpha"})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectJoinUnknownCodeIs404(t *testing.T) {
	pm := &fakeProjectManager{joinErr: project.ErrInvalidInviteCode}
	r := newProjectRouter(pm, 5)

	w := postJSON(t, r, "/api/project/join", gin.H{"inviteCode": "ffffffffffffffff"})

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "invalid invite code")
}

func TestProjectJoinSuccess(t *testing.T) {
	pm := &fakeProjectManager{joinedID: 8}
	r := newProjectRouter(pm, 5)

	w := postJSON(t, r, "/api/project/join", gin.H{"inviteCode": "abcdef0123456789"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abcdef0123456789", pm.joinedCode)
	assert.Contains(t, w.Body.String(), `"projectId":8`)
}

func TestProjectInfoFormatsCreatedOn(t *testing.T) {
	pm := &fakeProjectManager{info: &model.Project{
		ID:         3,
		Name:       "alpha",
		InviteCode: "abcdef0123456789",
		CreatedOn:  time.Date(2026, 2, 14, 16, 30, 0, 0, time.UTC),
	}}
	r := newProjectRouter(pm, 5)

	w := postJSON(t, r, "/api/project/info", gin.H{"projectId": 3})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"projectName":"alpha"`)
	assert.Contains(t, w.Body.String(), `"createdOn":"2026-02-14"`)
}

func TestProjectAssigneesShape(t *testing.T) {
	pm := &fakeProjectManager{team: []model.TeamMember{
		{UserID: 5, Name: "Sam"},
		{UserID: 6, Name: "Alex"},
	}}
	r := newProjectRouter(pm, 5)

	w := postJSON(t, r, "/api/project/assignees", gin.H{"projectId": 3})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":5`)
	assert.Contains(t, w.Body.String(), `"name":"Sam"`)
}

func TestProjectNewWithoutUserIs401(t *testing.T) {
	r := newProjectRouter(&fakeProjectManager{}, 0)

	w := postJSON(t, r, "/api/project/new", gin.H{"projectName": "alpha"})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
