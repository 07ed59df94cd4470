package model

import "time"

type Milestone struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Deadline  time.Time `json:"deadline"`
	ProjectID int       `json:"project_id"`
}

// MilestoneDetail is the project-view shape: a milestone with its tasks
// expanded, deadlines rendered as YYYY-MM-DD.
type MilestoneDetail struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Deadline string       `json:"deadline"`
	Tasks    []TaskDetail `json:"tasks"`
}
