package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"
	"github.com/HovhannisyanAlbert/chatServer/internal/media"
	"github.com/HovhannisyanAlbert/chatServer/internal/postgres"
	"github.com/HovhannisyanAlbert/chatServer/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

type Handler struct {
	userSvc    *service.UserService
	roomSvc    *service.RoomService
	historySvc *service.HistoryService

	validate *validator.Validate
}

func NewHandler(user *service.UserService, room *service.RoomService, history *service.HistoryService) *Handler {
	return &Handler{
		userSvc:    user,
		roomSvc:    room,
		historySvc: history,
		validate:   validator.New(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// internalError hides the failure detail from the client; it goes to the log
// only.
func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op, slog.Any("err", err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing or invalid fields"})
		return false
	}
	return true
}

// POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	user, err := h.userSvc.Register(r.Context(), req.Name, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrInvalidImage):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid base64 image data"})
		case errors.Is(err, domain.ErrUserNameTaken):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: req.Name + " with this name already exists"})
		default:
			internalError(w, "handler.CreateUser", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, StatusResponse{
		Status:  "success",
		Message: user.Name + " created successfully",
	})
}

// POST /users/check
func (h *Handler) CheckUser(w http.ResponseWriter, r *http.Request) {
	var req CheckUserRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	user, err := h.userSvc.CheckUser(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "User does not exist."})
			return
		}
		internalError(w, "handler.CheckUser", err)
		return
	}

	writeJSON(w, http.StatusOK, CheckUserResponse{Message: "User found.", Data: user.ID})
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNameTaken):
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: "Room name already exists"})
		case errors.Is(err, service.ErrEmptyRoomName):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "room name is required"})
		default:
			internalError(w, "handler.CreateRoom", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, RoomItem{ID: room.ID, Name: room.Name})
}

// GET /rooms?limit=&cursor=
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}
	cursor := r.URL.Query().Get("cursor")

	rooms, next, err := h.roomSvc.ListRooms(r.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		internalError(w, "handler.ListRooms", err)
		return
	}

	writeJSON(w, http.StatusOK, RoomsListResponse{
		Rooms: lo.Map(rooms, func(rm domain.Room, _ int) RoomItem {
			return RoomItem{ID: rm.ID, Name: rm.Name}
		}),
		NextCursor: next,
	})
}

// POST /rooms/{id}/members
func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AddMembersRequest
	if !h.decodeValid(w, r, &req) {
		return
	}

	if err := h.roomSvc.AddMembers(r.Context(), roomID, req.UserIDs); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Room does not exist"})
		case errors.Is(err, domain.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "One or more users do not exist"})
		default:
			internalError(w, "handler.AddMembers", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "success", Message: "Members added to the room successfully"})
}

// GET /rooms/{id}/messages
func (h *Handler) GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r)
	if !ok {
		return
	}

	items, err := h.historySvc.RoomHistory(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Room does not exist"})
			return
		}
		internalError(w, "handler.GetRoomMessages", err)
		return
	}
	if items == nil {
		items = []service.HistoryItem{}
	}

	writeJSON(w, http.StatusOK, MessagesResponse{Messages: items})
}

// DELETE /rooms/{id}
func (h *Handler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.roomSvc.DeleteRoom(r.Context(), roomID); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Room does not exist"})
			return
		}
		internalError(w, "handler.DeleteRoom", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return 0, false
	}
	return id, true
}
