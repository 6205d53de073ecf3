package watch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/cinesync/server/internal/domain"
	"github.com/cinesync/server/internal/service/auth"
)

type iShowRepo interface {
	FindOneByStatus(ctx context.Context, status domain.ShowStatus) (domain.Show, error)
	FindByStatuses(ctx context.Context, statuses []domain.ShowStatus) ([]domain.Show, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ShowStatus) error
	UpdateFinished(ctx context.Context, id int64, finishedAt time.Time) error
	UpdateStartTime(ctx context.Context, id int64, startTime time.Time) error
}

type iSubtitleRepo interface {
	FetchCues(ctx context.Context, url string) ([]domain.SubtitleCue, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connectionId string) error
	RemoveByConn(conn *websocket.Conn) (string, error)
	RemoveByConnectionId(connectionId string) (*websocket.Conn, error)
	GetConn(connectionId string) (*websocket.Conn, error)
	GetConnectionId(conn *websocket.Conn) (string, error)
}

type iSender interface {
	Send(conn *websocket.Conn, msg any) error
	Close(conn *websocket.Conn, code int, reason string) error
}

type iAuthenticator interface {
	Verify(credential string) auth.Verification
}

type Config struct {
	ScheduleInterval time.Duration
	TickInterval     time.Duration
	VoteTickInterval time.Duration
	PrepareOffset    time.Duration
	RemovalGrace     time.Duration
	VoteWindow       time.Duration
	StartNowDelay    time.Duration
}

func (cfg *Config) withDefaults() Config {
	out := Config{}
	if cfg != nil {
		out = *cfg
	}

	if out.ScheduleInterval <= 0 {
		out.ScheduleInterval = 5 * time.Second
	}
	if out.TickInterval <= 0 {
		out.TickInterval = 250 * time.Millisecond
	}
	if out.VoteTickInterval <= 0 {
		out.VoteTickInterval = time.Second
	}
	if out.PrepareOffset <= 0 {
		out.PrepareOffset = 5 * time.Second
	}
	if out.RemovalGrace <= 0 {
		out.RemovalGrace = 10 * time.Second
	}
	if out.VoteWindow <= 0 {
		out.VoteWindow = 15 * time.Second
	}
	if out.StartNowDelay <= 0 {
		out.StartNowDelay = 5 * time.Second
	}

	return out
}

// service is the watch synchronization engine. It owns every live room; show
// records are read through the repo and written back only on the
// processing->scheduled/error edge and on the watching/finished transitions.
type service struct {
	showRepo      iShowRepo
	subtitleRepo  iSubtitleRepo
	connRepo      iConnRepo
	sender        iSender
	authenticator iAuthenticator
	clock         clockwork.Clock
	logger        *slog.Logger
	cfg           Config

	// mu guards the three maps below. Everything inside a room is guarded by
	// that room's own mutex, never by mu.
	mu               sync.RWMutex
	rooms            map[int64]*room
	roomIdByPassCode map[string]int64
	roomByConnection map[string]string

	scheduling atomic.Bool
}

func NewService(
	showRepo iShowRepo,
	subtitleRepo iSubtitleRepo,
	connRepo iConnRepo,
	sender iSender,
	authenticator iAuthenticator,
	clock clockwork.Clock,
	logger *slog.Logger,
	cfg *Config,
) *service {
	return &service{
		showRepo:         showRepo,
		subtitleRepo:     subtitleRepo,
		connRepo:         connRepo,
		sender:           sender,
		authenticator:    authenticator,
		clock:            clock,
		logger:           logger,
		cfg:              cfg.withDefaults(),
		rooms:            make(map[int64]*room),
		roomIdByPassCode: make(map[string]int64),
		roomByConnection: make(map[string]string),
	}
}

// Run drives the scheduler, the room tick loop and the vote resolution loop
// until the context is cancelled.
func (s *service) Run(ctx context.Context) {
	scheduleTicker := s.clock.NewTicker(s.cfg.ScheduleInterval)
	defer scheduleTicker.Stop()
	tickTicker := s.clock.NewTicker(s.cfg.TickInterval)
	defer tickTicker.Stop()
	voteTicker := s.clock.NewTicker(s.cfg.VoteTickInterval)
	defer voteTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduleTicker.Chan():
			s.scheduleOnce(ctx)
		case <-tickTicker.Chan():
			s.processRooms(ctx)
		case <-voteTicker.Chan():
			s.resolveVotes(ctx)
		}
	}
}

// broadcast sends msg to every given connection. Callers must not hold a room
// lock: a slow peer must never stall state transitions.
func (s *service) broadcast(connectionIds []string, msg *Message) {
	for _, connectionId := range connectionIds {
		conn, err := s.connRepo.GetConn(connectionId)
		if err != nil {
			continue
		}

		if err := s.sender.Send(conn, msg); err != nil {
			s.logger.Info("failed to send to connection, closing it",
				"connection_id", connectionId,
				"error", err,
			)
			// the read loop observes the close and runs the disconnect path
			s.sender.Close(conn, websocket.CloseInternalServerErr, "")
		}
	}
}

func (s *service) sendTo(connectionId string, msg *Message) {
	s.broadcast([]string{connectionId}, msg)
}
