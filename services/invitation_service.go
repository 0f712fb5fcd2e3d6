package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/repositories"
	"github.com/daviderandino/ruggine/runtime"
)

type IInvitationService interface {
	Invite(ctx context.Context, groupID, inviterID, invitedUserID uuid.UUID) (domain.Invitation, error)
	Accept(ctx context.Context, invitationID, actingUserID uuid.UUID) (domain.Group, error)
	Decline(ctx context.Context, invitationID, actingUserID uuid.UUID) error
	ListPending(userID uuid.UUID) ([]domain.Invitation, error)
}

// InvitationService drives the pending -> accepted/declined lifecycle that
// gates group membership. The compound accept (status flip + membership
// insert) is delegated to a single repository transaction.
type InvitationService struct {
	log         *slog.Logger
	guard       *MembershipGuard
	invitations repositories.IInvitationRepository
	groups      repositories.IGroupRepository
	users       repositories.IUserRepository
	broadcaster *runtime.Broadcaster
}

func NewInvitationService(log *slog.Logger, guard *MembershipGuard,
	invitations repositories.IInvitationRepository, groups repositories.IGroupRepository,
	users repositories.IUserRepository, broadcaster *runtime.Broadcaster) *InvitationService {
	return &InvitationService{
		log:         log,
		guard:       guard,
		invitations: invitations,
		groups:      groups,
		users:       users,
		broadcaster: broadcaster,
	}
}

// Invite creates a pending invitation. The inviter must be a current member,
// the invited user must exist and must not already be a member, and at most
// one pending invitation per (group, invited user) may exist.
func (s *InvitationService) Invite(ctx context.Context, groupID, inviterID, invitedUserID uuid.UUID) (domain.Invitation, error) {
	if inviterID == invitedUserID {
		return domain.Invitation{}, errors.ErrCannotInviteSelf
	}
	if _, err := s.groups.GetByID(groupID); err != nil {
		return domain.Invitation{}, err
	}
	if err := s.guard.RequireMember(inviterID, groupID); err != nil {
		return domain.Invitation{}, err
	}
	if _, err := s.users.GetByID(invitedUserID); err != nil {
		return domain.Invitation{}, err
	}
	alreadyMember, err := s.guard.IsMember(invitedUserID, groupID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if alreadyMember {
		return domain.Invitation{}, errors.ErrAlreadyMember
	}

	inv, err := s.invitations.CreateInvitation(groupID, inviterID, invitedUserID)
	if err != nil {
		return domain.Invitation{}, err
	}
	s.log.Info("invitation created",
		"invitation_id", inv.ID, "group_id", groupID,
		"inviter_id", inviterID, "invited_user_id", invitedUserID)
	return inv, nil
}

// Accept transitions the invitation to accepted and makes the acting user a
// member, atomically. A system message announces the new member to everyone
// currently connected; failing to announce never undoes the acceptance.
func (s *InvitationService) Accept(ctx context.Context, invitationID, actingUserID uuid.UUID) (domain.Group, error) {
	inv, err := s.invitations.AcceptAndAddMember(invitationID, actingUserID)
	if err != nil {
		return domain.Group{}, err
	}

	group, err := s.groups.GetByID(inv.GroupID)
	if err != nil {
		return domain.Group{}, err
	}

	if user, err := s.users.GetByID(actingUserID); err == nil {
		content := fmt.Sprintf("%s joined the group", user.Username)
		if _, err := s.broadcaster.Publish(ctx, inv.GroupID, nil, content); err != nil {
			s.log.Warn("join announcement failed", "group_id", inv.GroupID, "error", err)
		}
	}
	return group, nil
}

// Decline marks the invitation declined. Terminal: a second decline or a
// later accept fails with ErrInvitationNotFound.
func (s *InvitationService) Decline(_ context.Context, invitationID, actingUserID uuid.UUID) error {
	_, err := s.invitations.Decline(invitationID, actingUserID)
	return err
}

// ListPending returns the invitations still awaiting the user's answer.
func (s *InvitationService) ListPending(userID uuid.UUID) ([]domain.Invitation, error) {
	return s.invitations.ListPendingForUser(userID)
}
