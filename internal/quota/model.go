package quota

import "time"

// Usage is a user's request-quota snapshot for the current weekly window.
type Usage struct {
	Tier     string    `json:"tier"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}
