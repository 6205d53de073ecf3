package domain

// SubtitleCue is one parsed subtitle line. Timestamps keep the SRT
// "HH:MM:SS,mmm" form so clients can apply them without re-parsing.
type SubtitleCue struct {
	Id        int    `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Text      string `json:"text"`
}
