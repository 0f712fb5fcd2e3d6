package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/mocks"
	"github.com/daviderandino/ruggine/runtime"
)

type invitationFixture struct {
	invitations *mocks.MockIInvitationRepository
	groups      *mocks.MockIGroupRepository
	users       *mocks.MockIUserRepository
	members     *mocks.MockIMembershipRepository
	messages    *mocks.MockIMessageRepository
	registry    *runtime.Registry
	svc         IInvitationService
}

func newInvitationFixture(ctrl *gomock.Controller) invitationFixture {
	f := invitationFixture{
		invitations: mocks.NewMockIInvitationRepository(ctrl),
		groups:      mocks.NewMockIGroupRepository(ctrl),
		users:       mocks.NewMockIUserRepository(ctrl),
		members:     mocks.NewMockIMembershipRepository(ctrl),
		messages:    mocks.NewMockIMessageRepository(ctrl),
		registry:    runtime.NewRegistry(),
	}
	log := slog.Default()
	broadcaster := runtime.NewBroadcaster(log, f.registry, f.messages, f.members, 50)
	guard := NewMembershipGuard(f.members)
	f.svc = NewInvitationService(log, guard, f.invitations, f.groups, f.users, broadcaster)
	return f
}

func TestInvitationService_Invite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	groupID := uuid.New()
	inviterID := uuid.New()
	invitedID := uuid.New()

	t.Run("should create a pending invitation", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		f.groups.EXPECT().GetByID(groupID).Return(domain.Group{ID: groupID}, nil)
		f.members.EXPECT().IsMember(inviterID, groupID).Return(true, nil)
		f.users.EXPECT().GetByID(invitedID).Return(domain.User{ID: invitedID}, nil)
		f.members.EXPECT().IsMember(invitedID, groupID).Return(false, nil)
		f.invitations.EXPECT().
			CreateInvitation(groupID, inviterID, invitedID).
			Return(domain.Invitation{ID: uuid.New(), Status: domain.InvitationPending}, nil)

		inv, err := f.svc.Invite(context.Background(), groupID, inviterID, invitedID)

		req.NoError(err)
		req.Equal(domain.InvitationPending, inv.Status)
	})

	t.Run("should refuse inviting yourself", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		_, err := f.svc.Invite(context.Background(), groupID, inviterID, inviterID)

		req.ErrorIs(err, errors.ErrCannotInviteSelf)
	})

	t.Run("should refuse when inviter is not a member", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		f.groups.EXPECT().GetByID(groupID).Return(domain.Group{ID: groupID}, nil)
		f.members.EXPECT().IsMember(inviterID, groupID).Return(false, nil)
		f.invitations.EXPECT().CreateInvitation(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.svc.Invite(context.Background(), groupID, inviterID, invitedID)

		req.ErrorIs(err, errors.ErrNotMember)
	})

	t.Run("should refuse when invited user is already a member", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		f.groups.EXPECT().GetByID(groupID).Return(domain.Group{ID: groupID}, nil)
		f.members.EXPECT().IsMember(inviterID, groupID).Return(true, nil)
		f.users.EXPECT().GetByID(invitedID).Return(domain.User{ID: invitedID}, nil)
		f.members.EXPECT().IsMember(invitedID, groupID).Return(true, nil)

		_, err := f.svc.Invite(context.Background(), groupID, inviterID, invitedID)

		req.ErrorIs(err, errors.ErrAlreadyMember)
	})

	t.Run("should refuse when group does not exist", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		f.groups.EXPECT().GetByID(groupID).Return(domain.Group{}, errors.ErrGroupNotFound)

		_, err := f.svc.Invite(context.Background(), groupID, inviterID, invitedID)

		req.ErrorIs(err, errors.ErrGroupNotFound)
	})
}

func TestInvitationService_Accept(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	groupID := uuid.New()
	invitedID := uuid.New()
	invitationID := uuid.New()

	t.Run("should accept and announce the new member", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		// A session is listening: the join notice must reach it.
		listener := runtime.NewSession(slog.Default(), uuid.New(), groupID, 16)
		f.registry.Register(groupID, listener)

		f.invitations.EXPECT().
			AcceptAndAddMember(invitationID, invitedID).
			Return(domain.Invitation{
				ID: invitationID, GroupID: groupID,
				InvitedUserID: invitedID, Status: domain.InvitationAccepted,
			}, nil)
		f.groups.EXPECT().GetByID(groupID).Return(domain.Group{ID: groupID, Name: "gophers"}, nil)
		f.users.EXPECT().GetByID(invitedID).Return(domain.User{ID: invitedID, Username: "alice"}, nil)
		f.messages.EXPECT().StoreMessage(gomock.Any()).Return(nil)

		group, err := f.svc.Accept(context.Background(), invitationID, invitedID)

		req.NoError(err)
		req.Equal("gophers", group.Name)

		notice := <-listener.Outbound()
		req.Nil(notice.SenderID)
		req.Equal("alice joined the group", notice.Content)
	})

	t.Run("should propagate not found from the repository", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		f.invitations.EXPECT().
			AcceptAndAddMember(invitationID, invitedID).
			Return(domain.Invitation{}, errors.ErrInvitationNotFound)

		_, err := f.svc.Accept(context.Background(), invitationID, invitedID)

		req.ErrorIs(err, errors.ErrInvitationNotFound)
	})

	t.Run("should accept even when the announcement cannot be stored", func(t *testing.T) {
		req := require.New(t)
		f := newInvitationFixture(ctrl)

		f.invitations.EXPECT().
			AcceptAndAddMember(invitationID, invitedID).
			Return(domain.Invitation{ID: invitationID, GroupID: groupID, InvitedUserID: invitedID}, nil)
		f.groups.EXPECT().GetByID(groupID).Return(domain.Group{ID: groupID}, nil)
		f.users.EXPECT().GetByID(invitedID).Return(domain.User{ID: invitedID, Username: "alice"}, nil)
		f.messages.EXPECT().StoreMessage(gomock.Any()).Return(fmt.Errorf("disk full"))

		_, err := f.svc.Accept(context.Background(), invitationID, invitedID)

		req.NoError(err)
	})
}

func TestInvitationService_Decline(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	f := newInvitationFixture(ctrl)
	invitationID := uuid.New()
	invitedID := uuid.New()

	f.invitations.EXPECT().
		Decline(invitationID, invitedID).
		Return(domain.Invitation{ID: invitationID, Status: domain.InvitationDeclined}, nil)

	req.NoError(f.svc.Decline(context.Background(), invitationID, invitedID))
}
