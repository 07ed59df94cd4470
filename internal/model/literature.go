package model

import "time"

type Literature struct {
	URLID      string    `json:"url_id"`
	Title      string    `json:"title"`
	Authors    string    `json:"authors"`
	Source     string    `json:"source"`
	Read       bool      `json:"read"`
	UserID     int       `json:"user_id"`
	UploadDate time.Time `json:"upload_date"`
}
