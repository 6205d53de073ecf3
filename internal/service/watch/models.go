package watch

// WatchStatus is the room session state. The numeric values are part of the
// wire contract with clients.
type WatchStatus int

const (
	StatusWaiting WatchStatus = iota
	StatusInit
	StatusOnline
	StatusFinished
)

func (s WatchStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusInit:
		return "init"
	case StatusOnline:
		return "online"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

type Vote int

const (
	VoteNone Vote = iota
	VoteYes
	VoteNo
)

// Message is the outbound channel envelope.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	messageTypeConnected       = "CONNECTED"
	messageTypePrepareToWatch  = "PREPARE_TO_WATCH"
	messageTypeStartWatching   = "START_WATCHING"
	messageTypeFinishWatching  = "FINISH_WATCHING"
	messageTypeVideoAction     = "VIDEO_ACTION"
	messageTypeUpdateVoting    = "UPDATE_VOTING"
	messageTypeUpdateViewers   = "UPDATE_VIEWERS"
	messageTypeUpdateStartTime = "UPDATE_START_TIME"
	messageTypeKickUserOut     = "KICK_USER_OUT"
	messageTypeRoomState       = "ROOM_STATE"
)

const (
	VideoActionPause  = "pause"
	VideoActionResume = "resume"
	VideoActionSlide  = "slide"
)

const (
	VotingActionRequest = "request"
	VotingActionVote    = "vote"

	votingEventUpdate = "update"
	votingEventFinish = "finish"
)

// Viewer is the public slice of a room member: display name and privilege
// level only, never the connection id.
type Viewer struct {
	FriendlyName string `json:"friendly_name"`
	Level        int    `json:"level"`
}

type VotingState struct {
	Active      bool   `json:"active"`
	ToPause     bool   `json:"to_pause"`
	StartedAt   int64  `json:"started_at"`
	EndsAt      int64  `json:"ends_at"`
	StarterName string `json:"starter_name"`
	Yes         int    `json:"yes"`
	No          int    `json:"no"`
}

// RoomState is a point-in-time snapshot of one live room, served to operators
// (watch list) and to members that ask for a resync.
type RoomState struct {
	ShowId        int64       `json:"show_id"`
	PassCode      string      `json:"pass_code"`
	ShowTitle     string      `json:"show_title"`
	MovieURL      string      `json:"movie_url"`
	WatchStatus   WatchStatus `json:"watch_status"`
	StartTime     int64       `json:"start_time"`
	Playing       bool        `json:"playing"`
	Progress      float64     `json:"progress"`
	Duration      float64     `json:"duration"`
	SmartSync     bool        `json:"smart_sync"`
	VotingEnabled bool        `json:"voting_enabled"`
	ViewersCount  int         `json:"viewers_count"`
	Voting        VotingState `json:"voting"`
}
