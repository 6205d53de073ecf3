package watch

import (
	"context"
)

type VotingParams struct {
	PassCode string
	Action   string
	ToPause  bool
	Yes      bool
}

// HandleVoting starts a round or records a vote. Invalid attempts (voting
// disabled, unprivileged start, double vote, stale round) are dropped
// silently; the resolution tick is what tells the room where the tally
// stands.
func (s *service) HandleVoting(ctx context.Context, connectionId string, params VotingParams) error {
	r, err := s.getRoomByPassCode(params.PassCode)
	if err != nil {
		return nil
	}

	switch params.Action {
	case VotingActionRequest:
		s.startVotingRound(connectionId, r, params.ToPause)
	case VotingActionVote:
		s.castVote(connectionId, r, params.Yes)
	}

	return nil
}

func (s *service) startVotingRound(connectionId string, r *room, toPause bool) {
	now := s.clock.Now()

	r.mu.Lock()
	m, ok := r.members[connectionId]
	if !ok || m.level <= 0 || !r.show.VotingEnabled || r.status != StatusOnline {
		r.mu.Unlock()
		return
	}
	if r.voting.active {
		r.mu.Unlock()
		return
	}
	// a pause round needs something to pause, a resume round something to resume
	if toPause != r.playing {
		r.mu.Unlock()
		return
	}

	r.resetVoting()
	r.voting = voting{
		active:      true,
		toPause:     toPause,
		startedAt:   now,
		endsAt:      now.Add(s.cfg.VoteWindow),
		starterName: m.friendlyName,
	}
	state := r.votingState()
	passCode := r.show.PassCode
	starterName := m.friendlyName
	connectionIds := r.connectionIds()
	r.mu.Unlock()

	s.broadcast(connectionIds, &Message{
		Type: messageTypeUpdateVoting,
		Payload: map[string]any{
			"pass_code": passCode,
			"event":     votingEventUpdate,
			"voting":    state,
		},
	})

	s.logger.Info("voting round started",
		"pass_code", passCode,
		"to_pause", toPause,
		"starter", starterName,
	)
}

func (s *service) castVote(connectionId string, r *room, yes bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[connectionId]
	if !ok || !r.voting.active || m.vote != VoteNone {
		return
	}

	if yes {
		m.vote = VoteYes
		r.voting.yes++
	} else {
		m.vote = VoteNo
		r.voting.no++
	}
}

// resolveVotes is the per-second voting tick: live rounds get their tally
// rebroadcast, expired rounds get closed and, on a yes majority, the
// requested pause/resume applied.
func (s *service) resolveVotes(ctx context.Context) {
	s.mu.RLock()
	rooms := make([]*room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()

	now := s.clock.Now()

	for _, r := range rooms {
		r.mu.Lock()
		if !r.voting.active {
			r.mu.Unlock()
			continue
		}

		passCode := r.show.PassCode
		connectionIds := r.connectionIds()

		if now.Before(r.voting.endsAt) {
			state := r.votingState()
			r.mu.Unlock()

			s.broadcast(connectionIds, &Message{
				Type: messageTypeUpdateVoting,
				Payload: map[string]any{
					"pass_code": passCode,
					"event":     votingEventUpdate,
					"voting":    state,
				},
			})
			continue
		}

		passed := r.voting.yes > r.voting.no
		toPause := r.voting.toPause

		var actionPayload map[string]any
		if passed && toPause == r.playing {
			if toPause {
				if r.pause(now) {
					actionPayload = map[string]any{
						"pass_code": passCode,
						"action":    VideoActionPause,
						"progress":  r.progress,
					}
				}
			} else {
				if r.resume(now) {
					actionPayload = map[string]any{
						"pass_code":  passCode,
						"action":     VideoActionResume,
						"progress":   r.currentProgress(now),
						"start_time": r.anchorTime.UnixMilli(),
					}
				}
			}
		}

		finalState := r.votingState()
		finalState.Active = false
		r.resetVoting()
		r.mu.Unlock()

		if actionPayload != nil {
			s.broadcast(connectionIds, &Message{
				Type:    messageTypeVideoAction,
				Payload: actionPayload,
			})
		}

		s.broadcast(connectionIds, &Message{
			Type: messageTypeUpdateVoting,
			Payload: map[string]any{
				"pass_code": passCode,
				"event":     votingEventFinish,
				"voting":    finalState,
			},
		})

		s.logger.Info("voting round closed",
			"pass_code", passCode,
			"yes", finalState.Yes,
			"no", finalState.No,
			"applied", actionPayload != nil,
		)
	}
}
