package domain

import "time"

type ShowStatus int

const (
	ShowStatusProcessing ShowStatus = iota
	ShowStatusScheduled
	ShowStatusWatching
	ShowStatusFinished
	ShowStatusCancelled
	ShowStatusError
)

func (s ShowStatus) String() string {
	switch s {
	case ShowStatusProcessing:
		return "processing"
	case ShowStatusScheduled:
		return "scheduled"
	case ShowStatusWatching:
		return "watching"
	case ShowStatusFinished:
		return "finished"
	case ShowStatusCancelled:
		return "cancelled"
	case ShowStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Show is a scheduled watch event. The pass code is the short human-facing
// identifier viewers use to find the room; at most one active
// (processing/scheduled/watching) show may hold a given pass code at a time.
type Show struct {
	Id            int64      `json:"id"`
	PassCode      string     `json:"pass_code"`
	Title         string     `json:"title"`
	MovieURL      string     `json:"movie_url"`
	SubtitleURL   string     `json:"subtitle_url"`
	StartTime     time.Time  `json:"start_time"`
	Duration      float64    `json:"duration"`
	SmartSync     bool       `json:"smart_sync"`
	VotingEnabled bool       `json:"voting_enabled"`
	Status        ShowStatus `json:"status"`
	FinishedAt    *time.Time `json:"finished_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s Show) IsActive() bool {
	switch s.Status {
	case ShowStatusProcessing, ShowStatusScheduled, ShowStatusWatching:
		return true
	default:
		return false
	}
}
