package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cinesync/server/pkg/ctxlogger"
)

// serveWS upgrades the connection and registers it with the watch engine. The
// client receives its connection id in a CONNECTED message and must present
// it when joining a room over REST.
func (c controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connectionId, err := c.watchService.ConnectSocket(conn)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect socket", "error", err)
		conn.Close()
		return
	}
	defer c.watchService.DisconnectConnection(conn)

	ctx := context.WithValue(r.Context(), connectionIdCtxKey, connectionId)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("connection_id", connectionId))

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "websocket connection closed", "error", err)
	}
}
