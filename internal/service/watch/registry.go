package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/domain"
)

// createRoom registers a live room for the show. Idempotent: a show that
// already has a room keeps it untouched.
func (s *service) createRoom(show domain.Show, cues []domain.SubtitleCue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[show.Id]; ok {
		return
	}

	s.rooms[show.Id] = newRoom(show, cues)
	s.roomIdByPassCode[show.PassCode] = show.Id
}

// removeRoom tears a room down: every member is told to leave, evicted from
// the connection registry and force-closed.
func (s *service) removeRoom(showId int64) {
	s.mu.Lock()
	r, ok := s.rooms[showId]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, showId)
	delete(s.roomIdByPassCode, r.show.PassCode)

	r.mu.Lock()
	connectionIds := r.connectionIds()
	r.members = make(map[string]*member)
	r.mu.Unlock()

	for _, connectionId := range connectionIds {
		delete(s.roomByConnection, connectionId)
	}
	s.mu.Unlock()

	kick := &Message{Type: messageTypeKickUserOut, Payload: map[string]any{
		"pass_code": r.show.PassCode,
	}}
	for _, connectionId := range connectionIds {
		s.sendTo(connectionId, kick)

		conn, err := s.connRepo.GetConn(connectionId)
		if err != nil {
			continue
		}
		if err := s.sender.Close(conn, websocket.CloseNormalClosure, "show finished"); err != nil {
			s.logger.Debug("failed to close evicted connection",
				"connection_id", connectionId,
				"error", err,
			)
		}
	}

	s.logger.Info("room removed", "show_id", showId, "pass_code", r.show.PassCode)
}

func (s *service) getRoomByPassCode(passCode string) (*room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	showId, ok := s.roomIdByPassCode[passCode]
	if !ok {
		return nil, ErrRoomNotFound
	}

	r, ok := s.rooms[showId]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return r, nil
}

type FindRoomResponse struct {
	ShowTitle string
	StartTime time.Time
}

// FindRoom resolves a pass code into the minimal info a client needs before
// joining.
func (s *service) FindRoom(ctx context.Context, passCode string) (FindRoomResponse, error) {
	r, err := s.getRoomByPassCode(passCode)
	if err != nil {
		return FindRoomResponse{}, fmt.Errorf("failed to find room: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status == StatusFinished {
		return FindRoomResponse{}, ErrRoomAlreadyFinished
	}

	return FindRoomResponse{
		ShowTitle: r.show.Title,
		StartTime: r.anchorTime,
	}, nil
}

// GetPreview returns a full state snapshot of one room.
func (s *service) GetPreview(ctx context.Context, passCode string) (RoomState, error) {
	r, err := s.getRoomByPassCode(passCode)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get preview: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state(s.clock.Now()), nil
}

// GetWatchList snapshots every live room for the operator dashboard.
func (s *service) GetWatchList(ctx context.Context) []RoomState {
	s.mu.RLock()
	rooms := make([]*room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()

	now := s.clock.Now()

	states := make([]RoomState, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		states = append(states, r.state(now))
		r.mu.Unlock()
	}

	return states
}

// AddWaitTime postpones a room that has not started yet, shifting both the
// playback anchor and the persisted show start time.
func (s *service) AddWaitTime(ctx context.Context, passCode string, minutes int) error {
	r, err := s.getRoomByPassCode(passCode)
	if err != nil {
		return fmt.Errorf("failed to add wait time: %w", err)
	}

	delay := time.Duration(minutes) * time.Minute

	r.mu.Lock()
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return ErrRoomAlreadyStarted
	}
	r.anchorTime = r.anchorTime.Add(delay)
	r.show.StartTime = r.show.StartTime.Add(delay)
	showId := r.show.Id
	newStart := r.show.StartTime
	newAnchor := r.anchorTime
	connectionIds := r.connectionIds()
	r.mu.Unlock()

	if err := s.showRepo.UpdateStartTime(ctx, showId, newStart); err != nil {
		s.logger.Error("failed to persist postponed start time",
			"show_id", showId,
			"error", err,
		)
	}

	s.broadcast(connectionIds, &Message{
		Type: messageTypeUpdateStartTime,
		Payload: map[string]any{
			"pass_code":  passCode,
			"start_time": newAnchor.UnixMilli(),
		},
	})

	s.logger.Info("wait time added",
		"pass_code", passCode,
		"minutes", minutes,
		"new_start_time", newStart,
	)

	return nil
}

// StartNow pulls a waiting room's anchor to a few seconds from now so the
// normal init/online transitions fire immediately.
func (s *service) StartNow(ctx context.Context, passCode string) error {
	r, err := s.getRoomByPassCode(passCode)
	if err != nil {
		return fmt.Errorf("failed to start now: %w", err)
	}

	r.mu.Lock()
	if r.status != StatusWaiting {
		r.mu.Unlock()
		return ErrRoomAlreadyStarted
	}
	r.anchorTime = s.clock.Now().Add(s.cfg.StartNowDelay)
	newAnchor := r.anchorTime
	connectionIds := r.connectionIds()
	r.mu.Unlock()

	s.broadcast(connectionIds, &Message{
		Type: messageTypeUpdateStartTime,
		Payload: map[string]any{
			"pass_code":  passCode,
			"start_time": newAnchor.UnixMilli(),
		},
	})

	s.logger.Info("room start forced", "pass_code", passCode, "start_time", newAnchor)

	return nil
}
