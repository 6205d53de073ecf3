package watch

import (
	"sync"
	"time"

	"github.com/cinesync/server/internal/domain"
)

type member struct {
	connectionId string
	friendlyName string
	level        int
	vote         Vote
}

type voting struct {
	active      bool
	toPause     bool
	startedAt   time.Time
	endsAt      time.Time
	starterName string
	yes         int
	no          int
}

// room is the synchronized-playback state for one show. Every field below mu
// is guarded by it; the engine never mutates a room without holding it and
// never performs I/O or sends while holding it.
type room struct {
	mu sync.Mutex

	show       domain.Show
	status     WatchStatus
	anchorTime time.Time
	playing    bool
	progress   float64
	subtitleOn bool
	subtitles  []domain.SubtitleCue
	voting     voting
	members    map[string]*member
}

func newRoom(show domain.Show, cues []domain.SubtitleCue) *room {
	return &room{
		show:       show,
		status:     StatusWaiting,
		anchorTime: show.StartTime,
		playing:    false,
		progress:   0,
		subtitleOn: len(cues) > 0,
		subtitles:  cues,
		members:    make(map[string]*member),
	}
}

// pause freezes playback, converting the anchor into a paused progress.
// Returns false without changes when already paused.
func (r *room) pause(now time.Time) bool {
	if !r.playing {
		return false
	}

	r.playing = false
	r.progress = now.Sub(r.anchorTime).Seconds()

	return true
}

// resume re-derives the anchor so that position continues from the paused
// progress. Returns false without changes when already playing.
func (r *room) resume(now time.Time) bool {
	if r.playing {
		return false
	}

	r.playing = true
	r.anchorTime = now.Add(-time.Duration(r.progress * float64(time.Second)))

	return true
}

// slide seeks to an absolute position, preserving the current play/pause
// state. Only valid while the room is online.
func (r *room) slide(now time.Time, to float64) bool {
	if r.status != StatusOnline {
		return false
	}

	r.progress = to
	r.anchorTime = now.Add(-time.Duration(to * float64(time.Second)))

	return true
}

// currentProgress computes the playback position in seconds at the given
// instant.
func (r *room) currentProgress(now time.Time) float64 {
	if r.playing {
		return now.Sub(r.anchorTime).Seconds()
	}

	return r.progress
}

func (r *room) endTime() time.Time {
	return r.anchorTime.Add(time.Duration(r.show.Duration * float64(time.Second)))
}

// connectionIds snapshots the member set for a broadcast outside the lock.
func (r *room) connectionIds() []string {
	ids := make([]string, 0, len(r.members))
	for connectionId := range r.members {
		ids = append(ids, connectionId)
	}

	return ids
}

func (r *room) viewers() []Viewer {
	viewers := make([]Viewer, 0, len(r.members))
	for _, m := range r.members {
		viewers = append(viewers, Viewer{
			FriendlyName: m.friendlyName,
			Level:        m.level,
		})
	}

	return viewers
}

func (r *room) votingState() VotingState {
	return VotingState{
		Active:      r.voting.active,
		ToPause:     r.voting.toPause,
		StartedAt:   r.voting.startedAt.UnixMilli(),
		EndsAt:      r.voting.endsAt.UnixMilli(),
		StarterName: r.voting.starterName,
		Yes:         r.voting.yes,
		No:          r.voting.no,
	}
}

// resetVoting clears the active round and every member's vote.
func (r *room) resetVoting() {
	r.voting = voting{}
	for _, m := range r.members {
		m.vote = VoteNone
	}
}

// retractVote removes a departing member's contribution from an active
// round's tally so a disconnect can not leave a stale majority behind.
func (r *room) retractVote(m *member) {
	if !r.voting.active {
		return
	}

	switch m.vote {
	case VoteYes:
		r.voting.yes--
	case VoteNo:
		r.voting.no--
	}
	m.vote = VoteNone
}

func (r *room) state(now time.Time) RoomState {
	return RoomState{
		ShowId:        r.show.Id,
		PassCode:      r.show.PassCode,
		ShowTitle:     r.show.Title,
		MovieURL:      r.show.MovieURL,
		WatchStatus:   r.status,
		StartTime:     r.anchorTime.UnixMilli(),
		Playing:       r.playing,
		Progress:      r.currentProgress(now),
		Duration:      r.show.Duration,
		SmartSync:     r.show.SmartSync,
		VotingEnabled: r.show.VotingEnabled,
		ViewersCount:  len(r.members),
		Voting:        r.votingState(),
	}
}
