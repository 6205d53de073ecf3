package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/repository/connection"
)

// Repo tracks open channels by connection id. It only answers "which conn is
// this id" and the reverse; room membership is owned by the watch service.
type Repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
}

func NewRepo() *Repo {
	return &Repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
	}
}

func (r *Repo) Add(conn *websocket.Conn, connectionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[connectionId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = connectionId
	r.idList[connectionId] = conn

	return nil
}

// RemoveByConn unregisters the channel and returns the connection id it held.
// It does not close the conn; the caller owns the socket lifecycle.
func (r *Repo) RemoveByConn(conn *websocket.Conn) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connectionId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, connectionId)

	return connectionId, nil
}

func (r *Repo) RemoveByConnectionId(connectionId string) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[connectionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, connectionId)

	return conn, nil
}

func (r *Repo) GetConn(connectionId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[connectionId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *Repo) GetConnectionId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	connectionId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return connectionId, nil
}
