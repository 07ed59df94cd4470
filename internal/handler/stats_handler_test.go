package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retrack/internal/model"
)

type fakeStats struct {
	activeProjects int
	err            error
}

func (f *fakeStats) ProjectTaskStats(context.Context, int) (model.TaskStats, error) {
	return model.TaskStats{CompletedTasks: 3, PendingTasks: 2, TotalTasks: 5}, f.err
}

func (f *fakeStats) ProjectPriorityDistribution(context.Context, int) ([]model.PriorityCount, error) {
	return []model.PriorityCount{{Priority: "high", Count: 2}}, f.err
}

func (f *fakeStats) ProjectTimeline(context.Context, int) ([]model.TimelineItem, error) {
	return nil, f.err
}

func (f *fakeStats) AssignedTaskStats(context.Context, int) (model.TaskStats, error) {
	return model.TaskStats{CompletedTasks: 1, PendingTasks: 1, TotalTasks: 2}, f.err
}

func (f *fakeStats) AssignedPriorityDistribution(context.Context, int) ([]model.PriorityCount, error) {
	return []model.PriorityCount{{Priority: "low", Count: 1}}, f.err
}

func (f *fakeStats) AssignedTimeline(context.Context, int) ([]model.TimelineItem, error) {
	return nil, f.err
}

func (f *fakeStats) ActiveProjects(context.Context, int) (int, error) {
	return f.activeProjects, f.err
}

func (f *fakeStats) UpcomingDeadlines(context.Context, int) ([]model.UpcomingDeadline, error) {
	return []model.UpcomingDeadline{{ID: 9, Name: "review", Date: time.Now(), Priority: "high", ProjectName: "alpha"}}, f.err
}

func (f *fakeStats) ProjectRoles(context.Context, int) ([]model.ProjectRole, error) {
	return []model.ProjectRole{{ID: 4, Name: "alpha", Role: "owner"}}, f.err
}

func newStatsRouter(stats StatsProvider, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewStatsHandler(stats, zap.NewNop())
	authed := r.Group("/")
	if userID != 0 {
		authed.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	}
	authed.POST("/api/stats/info", h.Info)
	authed.POST("/api/stats/userstats", h.UserStats)
	return r
}

func TestStatsInfoShape(t *testing.T) {
	r := newStatsRouter(&fakeStats{}, 7)

	w := postJSON(t, r, "/api/stats/info", gin.H{})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp, "taskStats")
	require.Contains(t, resp, "priorityDistribution")
	require.Contains(t, resp, "timeline")
	require.NotContains(t, resp, "upcomingDeadlines")
	require.NotContains(t, resp, "projects")
	require.NotContains(t, resp, "priorities")
}

func TestStatsUserStatsShape(t *testing.T) {
	r := newStatsRouter(&fakeStats{activeProjects: 3}, 7)

	w := postJSON(t, r, "/api/stats/userstats", gin.H{})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp, "taskStats")
	require.Contains(t, resp, "activeProjects")
	require.Contains(t, resp, "priorityDistribution")
	require.Contains(t, resp, "timeline")
	require.Contains(t, resp, "upcomingDeadlines")
	require.Contains(t, resp, "projects")
	require.NotContains(t, resp, "priorities")
	require.Equal(t, "3", string(resp["activeProjects"]))
}

func TestStatsFailureIsGeneric(t *testing.T) {
	r := newStatsRouter(&fakeStats{err: errors.New("connection refused")}, 7)

	w := postJSON(t, r, "/api/stats/userstats", gin.H{})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "failed to fetch stats")
	require.NotContains(t, w.Body.String(), "connection refused")
}

func TestStatsWithoutUserIs401(t *testing.T) {
	r := newStatsRouter(&fakeStats{}, 0)

	w := postJSON(t, r, "/api/stats/info", gin.H{})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "unauthorised access not allowed")
}
