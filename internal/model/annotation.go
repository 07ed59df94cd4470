package model

import "encoding/json"

// Highlight is one rectangle set a user marked on a document page. The
// coordinate payload is opaque to the server and stored as-is.
type Highlight struct {
	ID          string          `json:"id"`
	Page        int             `json:"page"`
	Color       string          `json:"color"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// PageDrawing holds the serialized freehand strokes for one page of a
// document, private to one user.
type PageDrawing struct {
	URLID      string          `json:"url_id"`
	UserID     int             `json:"user_id"`
	PageNumber int             `json:"page_number"`
	Data       json.RawMessage `json:"drawing_data"`
}
