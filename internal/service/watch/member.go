package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/domain"
)

// ConnectSocket registers an open channel and tells the client the id it must
// present when joining a room.
func (s *service) ConnectSocket(conn *websocket.Conn) (string, error) {
	connectionId := uuid.NewString()

	if err := s.connRepo.Add(conn, connectionId); err != nil {
		return "", fmt.Errorf("failed to register connection: %w", err)
	}

	if err := s.sender.Send(conn, &Message{
		Type: messageTypeConnected,
		Payload: map[string]any{
			"connection_id": connectionId,
		},
	}); err != nil {
		s.connRepo.RemoveByConn(conn)
		return "", fmt.Errorf("failed to greet connection: %w", err)
	}

	return connectionId, nil
}

type JoinRoomParams struct {
	ConnectionId string
	PassCode     string
	FriendlyName string
	Credential   string
	WithSubtitle bool
}

type JoinRoomResponse struct {
	ShowTitle string
	StartTime time.Time
	SmartSync bool
	Subtitles []domain.SubtitleCue
}

// JoinRoom attaches an already-open channel to a room. The channel must have
// been registered first; joining an unknown connection id fails.
func (s *service) JoinRoom(ctx context.Context, params JoinRoomParams) (JoinRoomResponse, error) {
	if _, err := s.connRepo.GetConn(params.ConnectionId); err != nil {
		return JoinRoomResponse{}, ErrSocketNotFound
	}

	r, err := s.getRoomByPassCode(params.PassCode)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to join room: %w", err)
	}

	// a connection belongs to at most one room
	s.leaveRoom(params.ConnectionId)

	verification := s.authenticator.Verify(params.Credential)

	r.mu.Lock()
	if r.status == StatusFinished {
		r.mu.Unlock()
		return JoinRoomResponse{}, ErrRoomAlreadyFinished
	}
	r.members[params.ConnectionId] = &member{
		connectionId: params.ConnectionId,
		friendlyName: params.FriendlyName,
		level:        verification.Level,
		vote:         VoteNone,
	}
	resp := JoinRoomResponse{
		ShowTitle: r.show.Title,
		StartTime: r.anchorTime,
		SmartSync: r.show.SmartSync,
	}
	if params.WithSubtitle && r.subtitleOn {
		resp.Subtitles = r.subtitles
	}
	viewers := r.viewers()
	connectionIds := r.connectionIds()
	r.mu.Unlock()

	s.mu.Lock()
	s.roomByConnection[params.ConnectionId] = params.PassCode
	s.mu.Unlock()

	s.broadcast(connectionIds, &Message{
		Type: messageTypeUpdateViewers,
		Payload: map[string]any{
			"pass_code": params.PassCode,
			"viewers":   viewers,
		},
	})

	s.logger.Info("viewer joined room",
		"pass_code", params.PassCode,
		"friendly_name", params.FriendlyName,
		"level", verification.Level,
	)

	return resp, nil
}

// HandleJoinNotify answers a member's resync request with a full room
// snapshot sent back over its own channel.
func (s *service) HandleJoinNotify(ctx context.Context, connectionId string, passCode string) error {
	r, err := s.getRoomByPassCode(passCode)
	if err != nil {
		return fmt.Errorf("failed to handle join notify: %w", err)
	}

	r.mu.Lock()
	if _, ok := r.members[connectionId]; !ok {
		r.mu.Unlock()
		return ErrRoomNotFound
	}
	state := r.state(s.clock.Now())
	r.mu.Unlock()

	s.sendTo(connectionId, &Message{
		Type:    messageTypeRoomState,
		Payload: state,
	})

	return nil
}

// DisconnectConnection runs the full leave path for a closed channel.
func (s *service) DisconnectConnection(conn *websocket.Conn) {
	connectionId, err := s.connRepo.RemoveByConn(conn)
	if err != nil {
		return
	}

	s.leaveRoom(connectionId)
}

// leaveRoom detaches a connection from whatever room it is in, retracting an
// unresolved vote before the refreshed viewer list goes out.
func (s *service) leaveRoom(connectionId string) {
	s.mu.Lock()
	passCode, ok := s.roomByConnection[connectionId]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.roomByConnection, connectionId)

	showId, ok := s.roomIdByPassCode[passCode]
	if !ok {
		s.mu.Unlock()
		return
	}
	r, ok := s.rooms[showId]
	s.mu.Unlock()
	if !ok {
		return
	}

	r.mu.Lock()
	m, ok := r.members[connectionId]
	if !ok {
		r.mu.Unlock()
		return
	}
	r.retractVote(m)
	delete(r.members, connectionId)
	viewers := r.viewers()
	connectionIds := r.connectionIds()
	r.mu.Unlock()

	s.broadcast(connectionIds, &Message{
		Type: messageTypeUpdateViewers,
		Payload: map[string]any{
			"pass_code": passCode,
			"viewers":   viewers,
		},
	})
}
