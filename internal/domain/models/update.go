package models

import "time"

const (
	TopicLive  = "live"
	TopicToday = "today"
)

// Update is the message pushed to subscribers by the poller.
type Update struct {
	Type    string    `json:"type"`
	Matches []Match   `json:"matches"`
	TS      time.Time `json:"ts"`
}
