package model

import "time"

type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code"`
	Keywords    string    `json:"keywords"`
	Description string    `json:"description"`
	CreatedOn   time.Time `json:"created_on"`
}

// ProjectRef is the list-view shape: id and name only.
type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TeamMember struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}
