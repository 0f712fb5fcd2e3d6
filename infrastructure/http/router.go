package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/daviderandino/ruggine/auth"
	"github.com/daviderandino/ruggine/infrastructure/ws"
)

// NewRouter mounts the REST surface and the websocket endpoint. The route
// shape mirrors the public API: /users for auth, /groups for group and
// message operations, /invitations for the invitation lifecycle.
func NewRouter(h *Handler, tokens *auth.TokenManager, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Post("/users/register", h.Register)
	r.Post("/users/login", h.Login)
	r.Get("/users/by_username/{username}", h.GetUserByUsername)
	r.Get("/groups/by_name/{name}", h.GetGroupByName)

	// The websocket upgrade authenticates via query token, not the
	// Authorization header, because browser websocket clients cannot set
	// headers on the upgrade request.
	r.Get("/groups/{id}/chat", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(tokens))
		pr.Use(chimw.Timeout(30 * time.Second))

		pr.Post("/groups", h.CreateGroup)
		pr.Route("/groups/{id}", func(gr chi.Router) {
			gr.Get("/members", h.GetGroupMembers)
			gr.Get("/messages", h.GetGroupMessages)
			gr.Delete("/leave", h.LeaveGroup)
			gr.Post("/invite", h.InviteToGroup)
		})

		pr.Get("/invitations", h.GetPendingInvitations)
		pr.Post("/invitations/{id}/accept", h.AcceptInvitation)
		pr.Post("/invitations/{id}/decline", h.DeclineInvitation)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
