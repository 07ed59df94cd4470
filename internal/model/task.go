package model

import "time"

type Task struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Deadline    time.Time `json:"deadline"`
	Label       string    `json:"label"` // priority: high / medium / low
	Completed   bool      `json:"completed"`
	MilestoneID int       `json:"milestone_id"`
}

// TaskDetail is the milestone-view shape: assignees and linked literature
// expanded, deadline rendered as YYYY-MM-DD.
type TaskDetail struct {
	ID         int          `json:"id"`
	Name       string       `json:"name"`
	Deadline   string       `json:"deadline"`
	AssignedTo []int        `json:"assignedTo"`
	Priority   string       `json:"priority"`
	Literature []Literature `json:"literature"`
	Completed  bool         `json:"completed"`
}
