package services

import (
	"github.com/google/uuid"

	"github.com/daviderandino/ruggine/errors"
	"github.com/daviderandino/ruggine/repositories"
)

// MembershipGuard is the authorization gate for everything group-scoped.
// Pure checks, no side effects.
type MembershipGuard struct {
	members repositories.IMembershipRepository
}

func NewMembershipGuard(members repositories.IMembershipRepository) *MembershipGuard {
	return &MembershipGuard{members: members}
}

func (g *MembershipGuard) IsMember(userID, groupID uuid.UUID) (bool, error) {
	return g.members.IsMember(userID, groupID)
}

// RequireMember returns ErrNotMember when the user does not currently
// belong to the group.
func (g *MembershipGuard) RequireMember(userID, groupID uuid.UUID) error {
	ok, err := g.members.IsMember(userID, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrNotMember
	}
	return nil
}
