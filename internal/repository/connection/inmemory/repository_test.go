package inmemory

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cinesync/server/internal/repository/connection"
)

func TestAddAndLookup(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}

	require.NoError(t, repo.Add(conn, "conn-1"))
	require.ErrorIs(t, repo.Add(conn, "conn-2"), connection.ErrAlreadyExists)
	require.ErrorIs(t, repo.Add(&websocket.Conn{}, "conn-1"), connection.ErrAlreadyExists)

	got, err := repo.GetConn("conn-1")
	require.NoError(t, err)
	require.Same(t, conn, got)

	id, err := repo.GetConnectionId(conn)
	require.NoError(t, err)
	require.Equal(t, "conn-1", id)
}

func TestRemoveByConn(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}
	require.NoError(t, repo.Add(conn, "conn-1"))

	id, err := repo.RemoveByConn(conn)
	require.NoError(t, err)
	require.Equal(t, "conn-1", id)

	_, err = repo.GetConn("conn-1")
	require.ErrorIs(t, err, connection.ErrNotFound)

	_, err = repo.RemoveByConn(conn)
	require.ErrorIs(t, err, connection.ErrNotFound)
}

func TestRemoveByConnectionId(t *testing.T) {
	repo := NewRepo()
	conn := &websocket.Conn{}
	require.NoError(t, repo.Add(conn, "conn-1"))

	got, err := repo.RemoveByConnectionId("conn-1")
	require.NoError(t, err)
	require.Same(t, conn, got)

	_, err = repo.GetConnectionId(conn)
	require.ErrorIs(t, err, connection.ErrNotFound)
}
