package domain

import "time"

// Vote is one entry of a poll's append-only audit log.
type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	Timestamp time.Time `json:"timestamp"`
}
