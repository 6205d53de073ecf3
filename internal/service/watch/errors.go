package watch

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomAlreadyStarted  = errors.New("room already started")
	ErrRoomAlreadyFinished = errors.New("room already finished")
	ErrSocketNotFound      = errors.New("socket not found")
)
