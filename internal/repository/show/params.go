package show

import "time"

type CreateParams struct {
	PassCode      string
	Title         string
	MovieURL      string
	SubtitleURL   string
	StartTime     time.Time
	Duration      float64
	SmartSync     bool
	VotingEnabled bool
}
