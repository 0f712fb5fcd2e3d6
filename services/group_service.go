package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/repositories"
	"github.com/daviderandino/ruggine/runtime"
)

type IGroupService interface {
	Create(ctx context.Context, name string, creatorID uuid.UUID) (domain.Group, error)
	GetByName(name string) (domain.Group, error)
	Members(userID, groupID uuid.UUID) ([]domain.User, error)
	Leave(ctx context.Context, userID, groupID uuid.UUID) error
}

type GroupService struct {
	log         *slog.Logger
	guard       *MembershipGuard
	groups      repositories.IGroupRepository
	members     repositories.IMembershipRepository
	users       repositories.IUserRepository
	broadcaster *runtime.Broadcaster
}

func NewGroupService(log *slog.Logger, guard *MembershipGuard,
	groups repositories.IGroupRepository, members repositories.IMembershipRepository,
	users repositories.IUserRepository, broadcaster *runtime.Broadcaster) *GroupService {
	return &GroupService{
		log:         log,
		guard:       guard,
		groups:      groups,
		members:     members,
		users:       users,
		broadcaster: broadcaster,
	}
}

// Create makes a new group with the creator as its first member.
func (s *GroupService) Create(_ context.Context, name string, creatorID uuid.UUID) (domain.Group, error) {
	group, err := s.groups.CreateGroup(name, creatorID)
	if err != nil {
		return domain.Group{}, err
	}
	s.log.Info("group created", "group_id", group.ID, "name", name, "creator_id", creatorID)
	return group, nil
}

func (s *GroupService) GetByName(name string) (domain.Group, error) {
	return s.groups.GetByName(name)
}

// Members resolves the group's member list to users. Member-only.
func (s *GroupService) Members(userID, groupID uuid.UUID) ([]domain.User, error) {
	if err := s.guard.RequireMember(userID, groupID); err != nil {
		return nil, err
	}
	memberships, err := s.members.ListMembers(groupID)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(memberships))
	for _, m := range memberships {
		user, err := s.users.GetByID(m.UserID)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Leave removes the membership. When the last member leaves, the group and
// everything attached to it (memberships, invitations, message history) is
// deleted synchronously so no group is left permanently memberless.
// Otherwise the remaining members get a system message.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) error {
	if err := s.guard.RequireMember(userID, groupID); err != nil {
		return err
	}
	if err := s.members.RemoveMember(userID, groupID); err != nil {
		return err
	}

	count, err := s.members.MemberCount(groupID)
	if err != nil {
		return err
	}
	if count == 0 {
		s.log.Info("last member left, deleting group", "group_id", groupID, "user_id", userID)
		return s.groups.DeleteGroup(groupID)
	}

	if user, err := s.users.GetByID(userID); err == nil {
		content := fmt.Sprintf("%s left the group", user.Username)
		if _, err := s.broadcaster.Publish(ctx, groupID, nil, content); err != nil {
			s.log.Warn("leave announcement failed", "group_id", groupID, "error", err)
		}
	}
	return nil
}
