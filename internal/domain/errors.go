package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrRoomNameTaken = errors.New("room name already exists")
	ErrUserNameTaken = errors.New("user name already exists")
	ErrEmptyMessage  = errors.New("empty message")
	ErrMessageTooBig = errors.New("message too long")
)
