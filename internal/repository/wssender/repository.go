package wssender

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const closeWriteTimeout = 5 * time.Second

// Repo serializes writes per connection. gorilla/websocket permits at most one
// concurrent writer on a conn, and the tick loop, the vote loop and inbound
// handlers may all broadcast to the same member at once.
type Repo struct {
	mu    sync.Mutex
	locks map[*websocket.Conn]*sync.Mutex
}

func NewRepo() *Repo {
	return &Repo{
		locks: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (r *Repo) lockFor(conn *websocket.Conn) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[conn]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[conn] = lock
	}

	return lock
}

func (r *Repo) Send(conn *websocket.Conn, msg any) error {
	lock := r.lockFor(conn)
	lock.Lock()
	defer lock.Unlock()

	return conn.WriteJSON(msg)
}

// Close sends a close frame with the given code and closes the conn. The
// per-conn lock entry is dropped so the map does not grow unbounded.
func (r *Repo) Close(conn *websocket.Conn, code int, reason string) error {
	lock := r.lockFor(conn)
	lock.Lock()
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(closeWriteTimeout))
	err := conn.Close()
	lock.Unlock()

	r.mu.Lock()
	delete(r.locks, conn)
	r.mu.Unlock()

	return err
}
