package model

import "time"

type TaskStats struct {
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	TotalTasks     int `json:"total_tasks"`
}

type PriorityCount struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

// TimelineItem is a task or milestone row flattened into one feed entry.
// Task-only columns are nil for milestones.
type TimelineItem struct {
	Type          string    `json:"type"` // task / milestone
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Date          time.Time `json:"date"`
	Completed     *bool     `json:"completed"`
	Priority      *string   `json:"priority"`
	MilestoneName *string   `json:"milestone_name"`
	ProjectName   string    `json:"project_name"`
}

type UpcomingDeadline struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Priority    string    `json:"priority"`
	ProjectName string    `json:"project_name"`
	Completed   bool      `json:"completed"`
}

type ProjectRole struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
