package http

import (
	"net/http"
	"time"

	"github.com/HovhannisyanAlbert/chatServer/internal/transport/ws"
	"github.com/HovhannisyanAlbert/chatServer/pkg/metrics"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler, wsServer *ws.Server, mediaDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	// WS endpoint
	r.Get("/ws/messages/{room_name}/", wsServer.HandleWS)
	r.Get("/ws/messages/{room_name}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/users", func(ur chi.Router) {
			ur.Post("/", h.CreateUser)
			ur.Post("/check", h.CheckUser)
		})

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)
			rm.Get("/", h.ListRooms)

			rm.Route("/{id}", func(rr chi.Router) {
				rr.Get("/messages", h.GetRoomMessages)
				rr.Post("/members", h.AddMembers)
				rr.Delete("/", h.DeleteRoom)
			})
		})
	})

	// decoded avatars
	r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))

	r.Handle("/metrics", metrics.Handler())

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
