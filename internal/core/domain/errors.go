package domain

import "errors"

var (
	ErrRoomFull           = errors.New("room is full")
	ErrNotInRoom          = errors.New("connection has not joined a room")
	ErrAlreadyJoined      = errors.New("connection already joined a room")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrConnectionExists   = errors.New("connection already registered")
)
