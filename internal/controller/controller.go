package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/domain"
	"github.com/cinesync/server/internal/service/auth"
	showservice "github.com/cinesync/server/internal/service/show"
	"github.com/cinesync/server/internal/service/watch"
	"github.com/cinesync/server/pkg/validator"
	"github.com/cinesync/server/pkg/wsrouter"
)

type iWatchService interface {
	ConnectSocket(conn *websocket.Conn) (string, error)
	DisconnectConnection(conn *websocket.Conn)
	FindRoom(ctx context.Context, passCode string) (watch.FindRoomResponse, error)
	JoinRoom(ctx context.Context, params watch.JoinRoomParams) (watch.JoinRoomResponse, error)
	GetPreview(ctx context.Context, passCode string) (watch.RoomState, error)
	GetWatchList(ctx context.Context) []watch.RoomState
	AddWaitTime(ctx context.Context, passCode string, minutes int) error
	StartNow(ctx context.Context, passCode string) error
	HandleVideoAction(ctx context.Context, connectionId string, params watch.VideoActionParams) error
	HandleVoting(ctx context.Context, connectionId string, params watch.VotingParams) error
	HandleJoinNotify(ctx context.Context, connectionId string, passCode string) error
}

type iShowService interface {
	Create(ctx context.Context, params showservice.CreateParams) (domain.Show, error)
	List(ctx context.Context) ([]domain.Show, error)
	SoftDelete(ctx context.Context, id int64) error
	Resubmit(ctx context.Context, id int64) (domain.Show, error)
}

type iAuthService interface {
	Login(password string) (string, error)
	Verify(credential string) auth.Verification
}

type controller struct {
	watchService iWatchService
	showService  iShowService
	authService  iAuthService
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	wsmux        *wsrouter.WSRouter
	logger       *slog.Logger
}

func NewController(
	watchService iWatchService,
	showService iShowService,
	authService iAuthService,
	logger *slog.Logger,
) *controller {
	c := &controller{
		watchService: watchService,
		showService:  showService,
		authService:  authService,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsmux = c.initWSMux()

	return c
}
