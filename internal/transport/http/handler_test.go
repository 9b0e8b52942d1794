package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HovhannisyanAlbert/chatServer/internal/domain"
	"github.com/HovhannisyanAlbert/chatServer/internal/media"
	"github.com/HovhannisyanAlbert/chatServer/internal/postgres"
	"github.com/HovhannisyanAlbert/chatServer/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeUserRepo struct {
	byName map[string]*domain.User
	nextID int64
}

func (r *fakeUserRepo) Create(_ context.Context, name string, imagePath *string) (*domain.User, error) {
	if _, ok := r.byName[name]; ok {
		return nil, domain.ErrUserNameTaken
	}
	r.nextID++
	u := &domain.User{ID: r.nextID, Name: name, ImagePath: imagePath}
	r.byName[name] = u
	return u, nil
}

func (r *fakeUserRepo) Get(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range r.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	if u, ok := r.byName[name]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type fakeAvatars struct{}

func (fakeAvatars) SaveAvatar(owner, b64 string) (string, error) {
	if b64 == "!!not-an-image" {
		return "", media.ErrInvalidImage
	}
	return "user_image/" + owner + ".png", nil
}

func (fakeAvatars) URL(rel *string) *string { return rel }

type fakeRoomRepo struct {
	byID    map[int64]*domain.Room
	members map[int64][]domain.User
	next    string
	nextID  int64
}

func (r *fakeRoomRepo) Create(_ context.Context, room *domain.Room) error {
	for _, existing := range r.byID {
		if existing.Name == room.Name {
			return domain.ErrRoomNameTaken
		}
	}
	r.nextID++
	room.ID = r.nextID
	r.byID[room.ID] = room
	return nil
}

func (r *fakeRoomRepo) Get(_ context.Context, id int64) (*domain.Room, error) {
	if room, ok := r.byID[id]; ok {
		return room, nil
	}
	return nil, domain.ErrRoomNotFound
}

func (r *fakeRoomRepo) GetByName(_ context.Context, name string) (*domain.Room, error) {
	for _, room := range r.byID {
		if room.Name == name {
			return room, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

func (r *fakeRoomRepo) List(_ context.Context, _ int, cursor string) ([]domain.Room, string, error) {
	if cursor == "garbage" {
		return nil, "", postgres.ErrInvalidCursor
	}
	var out []domain.Room
	for id := int64(1); id <= r.nextID; id++ {
		if room, ok := r.byID[id]; ok {
			out = append(out, *room)
		}
	}
	return out, r.next, nil
}

func (r *fakeRoomRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeRoomRepo) AddMembers(_ context.Context, roomID int64, userIDs []int64) error {
	if _, ok := r.byID[roomID]; !ok {
		return domain.ErrRoomNotFound
	}
	for _, id := range userIDs {
		if id >= 100 {
			return domain.ErrUserNotFound
		}
		r.members[roomID] = append(r.members[roomID], domain.User{ID: id})
	}
	return nil
}

func (r *fakeRoomRepo) ListMembers(_ context.Context, roomID int64) ([]domain.User, error) {
	return r.members[roomID], nil
}

type fakeHistoryMsgs struct {
	byUser map[int64][]domain.ChatMessage
}

func (f *fakeHistoryMsgs) ListByRoomAndUser(_ context.Context, _ int64, userID int64) ([]domain.ChatMessage, error) {
	return f.byUser[userID], nil
}

// --- fixture ---

type env struct {
	users *fakeUserRepo
	rooms *fakeRoomRepo
	msgs  *fakeHistoryMsgs
	srv   *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		users: &fakeUserRepo{byName: map[string]*domain.User{}},
		rooms: &fakeRoomRepo{byID: map[int64]*domain.Room{}, members: map[int64][]domain.User{}},
		msgs:  &fakeHistoryMsgs{byUser: map[int64][]domain.ChatMessage{}},
	}

	h := NewHandler(
		service.NewUserService(e.users, fakeAvatars{}),
		service.NewRoomService(e.rooms),
		service.NewHistoryService(e.rooms, e.msgs, fakeAvatars{}),
	)

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Post("/check", h.CheckUser)
	})
	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", h.CreateRoom)
		r.Get("/", h.ListRooms)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.DeleteRoom)
			r.Post("/members", h.AddMembers)
			r.Get("/messages", h.GetRoomMessages)
		})
	})

	e.srv = httptest.NewServer(r)
	t.Cleanup(e.srv.Close)
	return e
}

func (e *env) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

// --- tests ---

func TestCreateUser(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/users", `{"name":"bob","image":"aGk="}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "bob created successfully", body["message"])

	u := e.users.byName["bob"]
	require.NotNil(t, u)
	require.NotNil(t, u.ImagePath)
	assert.Equal(t, "user_image/bob.png", *u.ImagePath)
}

func TestCreateUserDuplicateName(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/users", `{"name":"bob","image":"aGk="}`)

	resp, body := e.do(t, http.MethodPost, "/users", `{"name":"bob","image":"aGk="}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "bob with this name already exists", body["error"])
}

func TestCreateUserBadInput(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/users", `{"name":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing or invalid fields", body["error"])

	resp, body = e.do(t, http.MethodPost, "/users", `{"name":"bob","image":"!!not-an-image"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid base64 image data", body["error"])
}

func TestCheckUser(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/users", `{"name":"bob","image":"aGk="}`)

	resp, body := e.do(t, http.MethodPost, "/users/check", `{"name":"bob"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "User found.", body["message"])
	assert.Equal(t, float64(1), body["data"])

	resp, body = e.do(t, http.MethodPost, "/users/check", `{"name":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User does not exist.", body["error"])
}

func TestCreateRoom(t *testing.T) {
	e := newEnv(t)

	resp, body := e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "general", body["name"])

	resp, body = e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Room name already exists", body["error"])
}

func TestListRooms(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)
	e.do(t, http.MethodPost, "/rooms", `{"name":"random"}`)
	e.rooms.next = "tok"

	resp, body := e.do(t, http.MethodGet, "/rooms", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	rooms, ok := body["rooms"].([]any)
	require.True(t, ok)
	assert.Len(t, rooms, 2)
	assert.Equal(t, "tok", body["next_cursor"])

	resp, body = e.do(t, http.MethodGet, "/rooms?cursor=garbage", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_cursor", body["error"])
}

func TestAddMembers(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)

	resp, body := e.do(t, http.MethodPost, "/rooms/1/members", `{"user_id":[1,2]}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Members added to the room successfully", body["message"])

	resp, body = e.do(t, http.MethodPost, "/rooms/9/members", `{"user_id":[1]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Room does not exist", body["error"])

	resp, body = e.do(t, http.MethodPost, "/rooms/1/members", `{"user_id":[100]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "One or more users do not exist", body["error"])

	resp, body = e.do(t, http.MethodPost, "/rooms/abc/members", `{"user_id":[1]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid room id", body["error"])

	resp, body = e.do(t, http.MethodPost, "/rooms/1/members", `{"user_id":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing or invalid fields", body["error"])
}

func TestGetRoomMessages(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)
	e.rooms.members[1] = []domain.User{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e.msgs.byUser = map[int64][]domain.ChatMessage{
		1: {{ID: 1, UserID: 1, Text: "hi", CreatedAt: base.Add(time.Second)}},
		2: {{ID: 2, UserID: 2, Text: "yo", CreatedAt: base.Add(2 * time.Second)}},
	}

	resp, body := e.do(t, http.MethodGet, "/rooms/1/messages", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first, ok := msgs[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi", first["message"])
	assert.Equal(t, "Alice", first["user_name"])
	assert.Equal(t, "2024-03-01 12:00:01", first["timestamp"])

	resp, body = e.do(t, http.MethodGet, "/rooms/9/messages", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Room does not exist", body["error"])
}

func TestGetRoomMessagesEmptyRoom(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)

	resp, body := e.do(t, http.MethodGet, "/rooms/1/messages", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Empty(t, msgs)
}

func TestDeleteRoom(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodPost, "/rooms", `{"name":"general"}`)

	resp, body := e.do(t, http.MethodDelete, "/rooms/1", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "deleted", body["status"])

	resp, body = e.do(t, http.MethodDelete, "/rooms/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Room does not exist", body["error"])
}
