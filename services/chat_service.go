package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/repositories"
	"github.com/daviderandino/ruggine/runtime"
)

// MaxContentLength bounds a single chat message.
const MaxContentLength = 4096

type IChatService interface {
	Connect(ctx context.Context, userID, groupID uuid.UUID) (*runtime.Session, error)
	Publish(ctx context.Context, groupID, senderID uuid.UUID, content string) (domain.Message, error)
	History(userID, groupID uuid.UUID, limit int) ([]domain.Message, error)
}

type ChatService struct {
	log         *slog.Logger
	guard       *MembershipGuard
	broadcaster *runtime.Broadcaster
	messages    repositories.IMessageRepository
	bufferSize  int
}

func NewChatService(log *slog.Logger, guard *MembershipGuard, broadcaster *runtime.Broadcaster,
	messages repositories.IMessageRepository, bufferSize int) *ChatService {
	return &ChatService{
		log:         log,
		guard:       guard,
		broadcaster: broadcaster,
		messages:    messages,
		bufferSize:  bufferSize,
	}
}

// Connect authorizes the user for the group and hands back a live session,
// already attached to the fan-out with its history replayed. The caller owns
// the session and must Close it when the connection ends.
func (s *ChatService) Connect(ctx context.Context, userID, groupID uuid.UUID) (*runtime.Session, error) {
	if err := s.guard.RequireMember(userID, groupID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sess := runtime.NewSession(s.log, userID, groupID, s.bufferSize)
	if err := s.broadcaster.Attach(sess); err != nil {
		sess.Close()
		return nil, err
	}
	s.log.Info("session connected",
		"session_id", sess.ID, "user_id", userID, "group_id", groupID)
	return sess, nil
}

// Publish validates the content and hands it to the broadcaster, which
// enforces membership and per-group ordering.
func (s *ChatService) Publish(ctx context.Context, groupID, senderID uuid.UUID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, errors.ErrEmptyContent
	}
	if len(content) > MaxContentLength {
		return domain.Message{}, errors.ErrContentTooLong
	}
	return s.broadcaster.Publish(ctx, groupID, &senderID, content)
}

// History returns the most recent messages, oldest-first, for a member.
func (s *ChatService) History(userID, groupID uuid.UUID, limit int) ([]domain.Message, error) {
	if err := s.guard.RequireMember(userID, groupID); err != nil {
		return nil, err
	}
	return s.messages.LoadRecent(groupID, limit)
}
