package domain

import "time"

// RawMessage is one email as fetched from the mail provider, before any
// classification. All pipeline stages pass these explicit records around
// instead of loose maps.
type RawMessage struct {
	ID       string    `json:"id"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	FromName string    `json:"from_name"`
	Body     string    `json:"body"`
	Snippet  string    `json:"snippet"`
	Date     time.Time `json:"date"`
	Labels   []string  `json:"labels"`
	ThreadID string    `json:"thread_id"`
}
