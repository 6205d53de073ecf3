package watch

import (
	"context"
)

type VideoActionParams struct {
	PassCode string
	Action   string
	To       float64
	SendTime int64
}

// HandleVideoAction applies a privileged pause/resume/slide to a room.
// Unprivileged callers and precondition-violating actions are dropped without
// a reply; clients learn an action took effect only from its broadcast.
func (s *service) HandleVideoAction(ctx context.Context, connectionId string, params VideoActionParams) error {
	r, err := s.getRoomByPassCode(params.PassCode)
	if err != nil {
		return nil
	}

	now := s.clock.Now()

	r.mu.Lock()
	m, ok := r.members[connectionId]
	if !ok || m.level <= 0 {
		r.mu.Unlock()
		return nil
	}

	var (
		applied      bool
		voteCanceled bool
		payload      map[string]any
	)

	switch params.Action {
	case VideoActionPause:
		if applied = r.pause(now); applied {
			payload = map[string]any{
				"pass_code": params.PassCode,
				"action":    VideoActionPause,
				"progress":  r.progress,
			}
		}
	case VideoActionResume:
		if applied = r.resume(now); applied {
			payload = map[string]any{
				"pass_code":  params.PassCode,
				"action":     VideoActionResume,
				"progress":   r.currentProgress(now),
				"start_time": r.anchorTime.UnixMilli(),
			}
		}
	case VideoActionSlide:
		if applied = r.slide(now, params.To); applied {
			payload = map[string]any{
				"pass_code":  params.PassCode,
				"action":     VideoActionSlide,
				"progress":   r.progress,
				"start_time": r.anchorTime.UnixMilli(),
				"send_time":  params.SendTime,
			}
		}
	}

	if !applied {
		r.mu.Unlock()
		return nil
	}

	// a direct pause/resume supersedes whatever the room was voting on
	var votingState VotingState
	if r.voting.active && params.Action != VideoActionSlide {
		votingState = r.votingState()
		votingState.Active = false
		r.resetVoting()
		voteCanceled = true
	}

	connectionIds := r.connectionIds()
	r.mu.Unlock()

	s.broadcast(connectionIds, &Message{
		Type:    messageTypeVideoAction,
		Payload: payload,
	})

	if voteCanceled {
		s.broadcast(connectionIds, &Message{
			Type: messageTypeUpdateVoting,
			Payload: map[string]any{
				"pass_code": params.PassCode,
				"event":     votingEventFinish,
				"voting":    votingState,
			},
		})
	}

	s.logger.Info("video action applied",
		"pass_code", params.PassCode,
		"action", params.Action,
	)

	return nil
}
