package ws

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/daviderandino/ruggine/auth"
	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/repositories"
	"github.com/daviderandino/ruggine/runtime"
	"github.com/daviderandino/ruggine/services"
)

const (
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
	maxFrameSize = 64 << 10
)

// Server upgrades authenticated members to a live chat connection. Each
// connection owns exactly one Session: the read loop feeds the broadcaster,
// the write loop drains the session's outbound queue onto the socket. All
// socket writes go through the write loop, gorilla connections do not allow
// concurrent writers.
type Server struct {
	log      *slog.Logger
	upgrader websocket.Upgrader
	tokens   *auth.TokenManager
	chatSvc  services.IChatService
	users    repositories.IUserRepository
}

func NewServer(log *slog.Logger, tokens *auth.TokenManager,
	chatSvc services.IChatService, users repositories.IUserRepository) *Server {
	return &Server{
		log:     log,
		tokens:  tokens,
		chatSvc: chatSvc,
		users:   users,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS serves GET /groups/{id}/chat?token=...
// Authorization happens before the upgrade so a non-member gets a proper
// HTTP status instead of an immediately-closed socket.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid group id", http.StatusBadRequest)
		return
	}

	sess, err := s.chatSvc.Connect(r.Context(), userID, groupID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case goerrors.Is(err, errors.ErrNotMember):
			status = http.StatusForbidden
		case goerrors.Is(err, errors.ErrGroupNotFound):
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", "user_id", userID, "group_id", groupID, "error", err)
		sess.Close()
		return
	}

	errFrames := make(chan ErrorPayload, 8)
	go s.writeLoop(conn, sess, errFrames)
	s.readLoop(r.Context(), conn, sess, errFrames)

	// Close deregisters the session before the socket is torn down, so the
	// fan-out never delivers into a dead transport.
	sess.Close()
	_ = conn.Close()
	s.log.Info("session disconnected",
		"session_id", sess.ID, "user_id", userID, "group_id", groupID)
}

// readLoop decodes inbound frames and publishes them. Publish failures are
// reported to this sender only; the group stream is unaffected.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, sess *runtime.Session, errFrames chan<- ErrorPayload) {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			select {
			case errFrames <- ErrorPayload{Error: "malformed frame"}:
			default:
			}
			continue
		}
		if _, err := s.chatSvc.Publish(ctx, sess.GroupID, sess.UserID, msg.Content); err != nil {
			select {
			case errFrames <- ErrorPayload{Error: err.Error()}:
			default:
			}
		}
	}
}

// writeLoop is the sole socket writer. It drains the session queue, tagging
// the replayed head of the queue as history, and closes the socket when the
// session is done, which in turn unblocks the read loop.
func (s *Server) writeLoop(conn *websocket.Conn, sess *runtime.Session, errFrames <-chan ErrorPayload) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	usernames := map[uuid.UUID]string{}
	remainingHistory := sess.HistoryCount()

	for {
		select {
		case msg := <-sess.Outbound():
			frameType := TypeMessage
			if remainingHistory > 0 {
				remainingHistory--
				frameType = TypeHistory
			} else if msg.SenderID == nil {
				frameType = TypeSystem
			}
			frame := Frame{Type: frameType, Payload: s.toPayload(msg, usernames)}
			if err := s.writeJSON(conn, frame); err != nil {
				sess.Close()
				return
			}
		case payload := <-errFrames:
			if err := s.writeJSON(conn, Frame{Type: TypeError, Payload: payload}); err != nil {
				sess.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.Close()
				return
			}
		case <-sess.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
			return
		}
	}
}

func (s *Server) writeJSON(conn *websocket.Conn, frame Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(frame)
}

func (s *Server) toPayload(m domain.Message, usernames map[uuid.UUID]string) MessagePayload {
	p := MessagePayload{
		MessageID: m.ID,
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.SenderID == nil {
		return p
	}
	name, ok := usernames[*m.SenderID]
	if !ok {
		if user, err := s.users.GetByID(*m.SenderID); err == nil {
			name = user.Username
		}
		usernames[*m.SenderID] = name
	}
	p.SenderUsername = name
	return p
}
