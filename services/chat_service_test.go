package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/mocks"
	"github.com/daviderandino/ruggine/runtime"
)

type chatFixture struct {
	members  *mocks.MockIMembershipRepository
	messages *mocks.MockIMessageRepository
	registry *runtime.Registry
	svc      IChatService
}

func newChatFixture(ctrl *gomock.Controller) chatFixture {
	f := chatFixture{
		members:  mocks.NewMockIMembershipRepository(ctrl),
		messages: mocks.NewMockIMessageRepository(ctrl),
		registry: runtime.NewRegistry(),
	}
	log := slog.Default()
	broadcaster := runtime.NewBroadcaster(log, f.registry, f.messages, f.members, 50)
	guard := NewMembershipGuard(f.members)
	f.svc = NewChatService(log, guard, broadcaster, f.messages, 16)
	return f
}

func TestChatService_Connect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	groupID := uuid.New()
	userID := uuid.New()

	t.Run("should attach a member with history replayed", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)
		senderID := uuid.New()

		f.members.EXPECT().IsMember(userID, groupID).Return(true, nil)
		f.messages.EXPECT().LoadRecent(groupID, 50).Return([]domain.Message{
			{ID: uuid.New(), GroupID: groupID, SenderID: &senderID, Content: "earlier", CreatedAt: time.Now().UTC()},
		}, nil)

		sess, err := f.svc.Connect(context.Background(), userID, groupID)

		req.NoError(err)
		defer sess.Close()
		req.Equal(1, sess.HistoryCount())
		req.Equal("earlier", (<-sess.Outbound()).Content)
		req.Len(f.registry.Snapshot(groupID), 1)
	})

	t.Run("should refuse a non-member", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.members.EXPECT().IsMember(userID, groupID).Return(false, nil)

		_, err := f.svc.Connect(context.Background(), userID, groupID)

		req.ErrorIs(err, errors.ErrNotMember)
		req.Empty(f.registry.Snapshot(groupID))
	})
}

func TestChatService_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	groupID := uuid.New()
	senderID := uuid.New()

	t.Run("should trim and publish content", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.members.EXPECT().IsMember(senderID, groupID).Return(true, nil)
		f.messages.EXPECT().StoreMessage(gomock.Any()).Return(nil)

		msg, err := f.svc.Publish(context.Background(), groupID, senderID, "  hello  ")

		req.NoError(err)
		req.Equal("hello", msg.Content)
	})

	t.Run("should refuse empty content", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.messages.EXPECT().StoreMessage(gomock.Any()).Times(0)

		_, err := f.svc.Publish(context.Background(), groupID, senderID, "   ")

		req.ErrorIs(err, errors.ErrEmptyContent)
	})

	t.Run("should refuse oversized content", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.messages.EXPECT().StoreMessage(gomock.Any()).Times(0)

		_, err := f.svc.Publish(context.Background(), groupID, senderID, strings.Repeat("a", MaxContentLength+100))

		req.ErrorIs(err, errors.ErrContentTooLong)
	})

	t.Run("should refuse oversized multi-byte content without mangling it", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.messages.EXPECT().StoreMessage(gomock.Any()).Times(0)

		// 2000 euro signs are 6000 bytes, well past the byte limit.
		_, err := f.svc.Publish(context.Background(), groupID, senderID, strings.Repeat("€", 2000))

		req.ErrorIs(err, errors.ErrContentTooLong)
	})
}

func TestChatService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	groupID := uuid.New()
	userID := uuid.New()

	t.Run("should return history for a member", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.members.EXPECT().IsMember(userID, groupID).Return(true, nil)
		f.messages.EXPECT().LoadRecent(groupID, 20).Return([]domain.Message{
			{ID: uuid.New(), Content: "a"}, {ID: uuid.New(), Content: "b"},
		}, nil)

		history, err := f.svc.History(userID, groupID, 20)

		req.NoError(err)
		req.Len(history, 2)
	})

	t.Run("should refuse a non-member", func(t *testing.T) {
		req := require.New(t)
		f := newChatFixture(ctrl)

		f.members.EXPECT().IsMember(userID, groupID).Return(false, nil)

		_, err := f.svc.History(userID, groupID, 20)

		req.ErrorIs(err, errors.ErrNotMember)
	})
}
