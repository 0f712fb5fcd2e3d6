package runtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
)

// Session is the in-memory state of one live connection, bound to one user
// and one group. It is owned by the connection goroutine that created it;
// the registry only holds a non-owning handle. Sessions are never persisted
// or recovered across restarts.
type Session struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	GroupID uuid.UUID

	out    chan domain.Message
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	closing bool
	onClose []func()

	// history is the number of replayed messages sitting at the head of
	// the queue, set once during attach before any live delivery.
	history int

	log *slog.Logger
}

func NewSession(log *slog.Logger, userID, groupID uuid.UUID, bufferSize int) *Session {
	return &Session{
		ID:      uuid.New(),
		UserID:  userID,
		GroupID: groupID,
		out:     make(chan domain.Message, bufferSize),
		closed:  make(chan struct{}),
		log:     log,
	}
}

// Deliver enqueues a message for the connection's write loop without ever
// blocking the caller. A full queue means the client is too slow to keep a
// reliable transcript, so the session is force-closed instead of silently
// dropping messages.
func (s *Session) Deliver(m domain.Message) error {
	select {
	case <-s.closed:
		return errors.ErrSessionClosed
	default:
	}

	select {
	case s.out <- m:
		return nil
	case <-s.closed:
		return errors.ErrSessionClosed
	default:
		s.log.Warn("session queue overflow, closing",
			"session_id", s.ID, "user_id", s.UserID, "group_id", s.GroupID)
		s.Close()
		return errors.ErrSessionOverflow
	}
}

// Outbound is consumed by the transport's write loop.
func (s *Session) Outbound() <-chan domain.Message { return s.out }

// MarkHistory records how many replayed messages lead the queue.
func (s *Session) MarkHistory(n int) { s.history = n }

// HistoryCount reports how many messages at the head of the queue are
// replayed history rather than live traffic.
func (s *Session) HistoryCount() int { return s.history }

// Done is closed once the session is torn down.
func (s *Session) Done() <-chan struct{} { return s.closed }

// OnClose registers a teardown hook. Hooks run in registration order, before
// Done is signalled: the registry hook therefore always deregisters the
// session before the transport is torn down. A hook added to an already
// closed session runs immediately, so a connection dropping mid-attach
// cannot leak its registration.
func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		fn()
		return
	}
	s.onClose = append(s.onClose, fn)
	s.mu.Unlock()
}

// Close tears the session down. It is idempotent: closing an already-closed
// session is a no-op.
func (s *Session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closing = true
		hooks := s.onClose
		s.onClose = nil
		s.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}
		close(s.closed)
	})
}
