package tracking

import "time"

// Event is one recorded visitor interaction.
type Event struct {
	ID         string    `json:"id"`
	VisitorKey string    `json:"visitorKey"`
	Event      string    `json:"event"`
	Path       string    `json:"path"`
	Referrer   string    `json:"referrer"`
	UserAgent  string    `json:"userAgent"`
	OccurredAt time.Time `json:"occurredAt"`
}

// DayCount is the number of events recorded on one calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}
