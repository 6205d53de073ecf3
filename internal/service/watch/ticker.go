package watch

import (
	"context"

	"github.com/cinesync/server/internal/domain"
)

// processRooms is the fine-grained tick: it walks every live room and
// advances it through its time-bound transitions. Persistence and broadcasts
// run after the room lock is released.
func (s *service) processRooms(ctx context.Context) {
	s.mu.RLock()
	type entry struct {
		showId int64
		room   *room
	}
	rooms := make([]entry, 0, len(s.rooms))
	for showId, r := range s.rooms {
		rooms = append(rooms, entry{showId: showId, room: r})
	}
	s.mu.RUnlock()

	now := s.clock.Now()

	for _, e := range rooms {
		r := e.room

		r.mu.Lock()
		switch r.status {
		case StatusWaiting:
			if now.Before(r.anchorTime.Add(-s.cfg.PrepareOffset)) {
				r.mu.Unlock()
				continue
			}
			r.status = StatusInit
			passCode := r.show.PassCode
			movieURL := r.show.MovieURL
			connectionIds := r.connectionIds()
			r.mu.Unlock()

			s.broadcast(connectionIds, &Message{
				Type: messageTypePrepareToWatch,
				Payload: map[string]any{
					"pass_code":    passCode,
					"movie_url":    movieURL,
					"watch_status": StatusInit,
				},
			})
			s.logger.Info("room preparing to watch", "pass_code", passCode)

		case StatusInit:
			if now.Before(r.anchorTime) {
				r.mu.Unlock()
				continue
			}
			r.status = StatusOnline
			r.playing = true
			showId := r.show.Id
			passCode := r.show.PassCode
			payload := map[string]any{
				"pass_code":    passCode,
				"movie_url":    r.show.MovieURL,
				"watch_status": StatusOnline,
				"playing":      true,
				"progress":     0.0,
				"start_time":   r.anchorTime.UnixMilli(),
				"duration":     r.show.Duration,
				"voting":       r.votingState(),
			}
			connectionIds := r.connectionIds()
			r.mu.Unlock()

			if err := s.showRepo.UpdateStatus(ctx, showId, domain.ShowStatusWatching); err != nil {
				s.logger.Error("failed to mark show watching", "show_id", showId, "error", err)
			}
			s.broadcast(connectionIds, &Message{
				Type:    messageTypeStartWatching,
				Payload: payload,
			})
			s.logger.Info("room online", "pass_code", passCode)

		case StatusOnline:
			if !r.playing || now.Before(r.endTime()) {
				r.mu.Unlock()
				continue
			}
			r.status = StatusFinished
			r.playing = false
			r.progress = r.show.Duration
			finishedAt := now
			r.show.FinishedAt = &finishedAt
			showId := r.show.Id
			passCode := r.show.PassCode
			connectionIds := r.connectionIds()
			r.mu.Unlock()

			if err := s.showRepo.UpdateFinished(ctx, showId, finishedAt); err != nil {
				s.logger.Error("failed to mark show finished", "show_id", showId, "error", err)
			}
			s.broadcast(connectionIds, &Message{
				Type: messageTypeFinishWatching,
				Payload: map[string]any{
					"pass_code":    passCode,
					"watch_status": StatusFinished,
					"show_status":  domain.ShowStatusFinished,
					"finished_at":  finishedAt.UnixMilli(),
				},
			})
			s.logger.Info("room finished", "pass_code", passCode)

		case StatusFinished:
			if now.Before(r.endTime().Add(s.cfg.RemovalGrace)) {
				r.mu.Unlock()
				continue
			}
			r.mu.Unlock()

			s.removeRoom(e.showId)

		default:
			r.mu.Unlock()
		}
	}
}
