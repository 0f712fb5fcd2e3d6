package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/daviderandino/ruggine/domain"
	"github.com/daviderandino/ruggine/errors"
)

func Test_Create_Group_Makes_Creator_A_Member(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	groups := NewGroupRepository(db)
	members := NewMembershipRepository(db)
	creatorID := uuid.New()

	group, err := groups.CreateGroup("rustaceans", creatorID)
	req.NoError(err)
	req.NotEqual(uuid.Nil, group.ID)

	isMember, err := members.IsMember(creatorID, group.ID)
	req.NoError(err)
	req.True(isMember)

	count, err := members.MemberCount(group.ID)
	req.NoError(err)
	req.Equal(1, count)
}

func Test_Create_Group_Duplicate_Name(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	groups := NewGroupRepository(db)

	_, err := groups.CreateGroup("gophers", uuid.New())
	req.NoError(err)

	_, err = groups.CreateGroup("gophers", uuid.New())
	req.ErrorIs(err, errors.ErrGroupNameExists)
}

func Test_Get_Group_By_Name(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	groups := NewGroupRepository(db)

	created, err := groups.CreateGroup("lobby", uuid.New())
	req.NoError(err)

	found, err := groups.GetByName("lobby")
	req.NoError(err)
	req.Equal(created.ID, found.ID)

	_, err = groups.GetByName("nope")
	req.ErrorIs(err, errors.ErrGroupNotFound)
}

func Test_Delete_Group_Cascades(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	groups := NewGroupRepository(db)
	members := NewMembershipRepository(db)
	invitations := NewInvitationRepository(db)
	messages := NewMessageRepository(db, slog.Default())

	creatorID := uuid.New()
	invitedID := uuid.New()
	group, err := groups.CreateGroup("doomed", creatorID)
	req.NoError(err)

	_, err = invitations.CreateInvitation(group.ID, creatorID, invitedID)
	req.NoError(err)
	req.NoError(messages.StoreMessage(domain.Message{
		ID: uuid.New(), GroupID: group.ID, SenderID: &creatorID,
		Content: "goodbye", CreatedAt: time.Now().UTC(),
	}))

	req.NoError(groups.DeleteGroup(group.ID))

	_, err = groups.GetByID(group.ID)
	req.ErrorIs(err, errors.ErrGroupNotFound)

	isMember, err := members.IsMember(creatorID, group.ID)
	req.NoError(err)
	req.False(isMember)

	history, err := messages.LoadRecent(group.ID, 10)
	req.NoError(err)
	req.Empty(history)

	pending, err := invitations.ListPendingForUser(invitedID)
	req.NoError(err)
	req.Empty(pending)

	// The name becomes available again.
	_, err = groups.CreateGroup("doomed", uuid.New())
	req.NoError(err)
}

func Test_Delete_Unknown_Group(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)

	groups := NewGroupRepository(db)
	req.ErrorIs(groups.DeleteGroup(uuid.New()), errors.ErrGroupNotFound)
}
