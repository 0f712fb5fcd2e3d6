package runtime

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/repositories"
)

// Broadcaster serializes and fans out chat messages. The durable log is the
// ordering authority: a message's position on disk is its canonical order,
// and per-group commit locks guarantee two concurrent publishes for one
// group cannot be interleaved out of commit order. Publishes for different
// groups proceed fully in parallel (up to lock-shard collisions).
type Broadcaster struct {
	log      *slog.Logger
	registry *Registry
	messages repositories.IMessageRepository
	members  repositories.IMembershipRepository

	commitLocks [shardCount]sync.Mutex

	historyLimit int
}

func NewBroadcaster(log *slog.Logger, registry *Registry,
	messages repositories.IMessageRepository, members repositories.IMembershipRepository,
	historyLimit int) *Broadcaster {
	return &Broadcaster{
		log:          log,
		registry:     registry,
		messages:     messages,
		members:      members,
		historyLimit: historyLimit,
	}
}

func (b *Broadcaster) commitLock(groupID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(groupID[:])
	return &b.commitLocks[h.Sum32()%shardCount]
}

// Publish persists a message and fans it out to every session present in
// the group's snapshot, including the sender's own session, so the sender
// sees the server-confirmed message rather than a local echo.
// A nil senderID publishes a system message and skips the membership check.
// If persistence fails the broadcast is abandoned for that message: nothing
// is delivered, so no session can see a message that was never committed.
func (b *Broadcaster) Publish(ctx context.Context, groupID uuid.UUID, senderID *uuid.UUID, content string) (domain.Message, error) {
	if senderID != nil {
		ok, err := b.members.IsMember(*senderID, groupID)
		if err != nil {
			return domain.Message{}, fmt.Errorf("membership check: %w", err)
		}
		if !ok {
			return domain.Message{}, errors.ErrNotMember
		}
	}
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}

	mu := b.commitLock(groupID)
	mu.Lock()
	defer mu.Unlock()

	var msg domain.Message
	if senderID == nil {
		msg = domain.System(groupID, content)
	} else {
		msg = domain.Message{
			ID:        uuid.New(),
			GroupID:   groupID,
			SenderID:  senderID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
	}
	if err := b.messages.StoreMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("persist message: %w", err)
	}

	for _, sink := range b.registry.Snapshot(groupID) {
		// Best effort: a closed or overflowing session only affects itself.
		if err := sink.Deliver(msg); err != nil {
			b.log.Debug("delivery skipped", "group_id", groupID, "error", err)
		}
	}
	return msg, nil
}

// Attach wires a session into the live stream with a consistent
// "history then live" hand-off: under the group's commit lock, the most
// recent history is replayed oldest-first into the session queue, then the
// session is registered. No published message can fall between the two.
// The registry hook is installed first so Close always deregisters before
// the transport goes away.
func (b *Broadcaster) Attach(s *Session) error {
	mu := b.commitLock(s.GroupID)
	mu.Lock()
	defer mu.Unlock()

	history, err := b.messages.LoadRecent(s.GroupID, b.historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	for _, msg := range history {
		if err := s.Deliver(msg); err != nil {
			return err
		}
	}
	s.MarkHistory(len(history))

	reg := b.registry.Register(s.GroupID, s)
	s.OnClose(func() { b.registry.Unregister(reg) })
	return nil
}
