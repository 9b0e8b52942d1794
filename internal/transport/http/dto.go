package http

import "github.com/HovhannisyanAlbert/chatServer/internal/service"

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required,max=150"`
	Image string `json:"image" validate:"required"`
}

type CheckUserRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AddMembersRequest struct {
	UserIDs []int64 `json:"user_id" validate:"required,min=1,dive,gt=0"`
}

type RoomItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RoomsListResponse struct {
	Rooms      []RoomItem `json:"rooms"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type MessagesResponse struct {
	Messages []service.HistoryItem `json:"messages"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CheckUserResponse struct {
	Message string `json:"message"`
	Data    int64  `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
