package repositories

import (
	"fmt"

	"github.com/google/uuid"
)

// Key layout. Every entity lives under its own prefix so that prefix scans
// stay bounded to one concern:
//
//	user:id:{uuid}                      -> user record
//	user:name:{username}                -> user id (uniqueness index)
//	group:id:{uuid}                     -> group record
//	group:name:{name}                   -> group id (uniqueness index)
//	member:{group}:{user}               -> membership record
//	invite:id:{uuid}                    -> invitation record
//	invite:group:{group}:{invitation}   -> invitation id (per-group cascade index)
//	invite:pending:{group}:{invited}    -> invitation id (pending uniqueness index)
//	invite:user:{invited}:{invitation}  -> invitation id (per-user pending listing)
//	msg:{group}:{unixnano %019d}:{uuid} -> message record
//
// The message key embeds a 19-digit zero-padded timestamp so lexicographic
// order is chronological order, with the UUID as a collision disconnector
// when two messages land on the same nanosecond.

func userKey(id uuid.UUID) []byte     { return []byte("user:id:" + id.String()) }
func usernameKey(name string) []byte  { return []byte("user:name:" + name) }
func groupKey(id uuid.UUID) []byte    { return []byte("group:id:" + id.String()) }
func groupNameKey(name string) []byte { return []byte("group:name:" + name) }

func memberKey(groupID, userID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("member:%s:%s", groupID, userID))
}

func memberPrefix(groupID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("member:%s:", groupID))
}

func invitationKey(id uuid.UUID) []byte { return []byte("invite:id:" + id.String()) }

func groupInvitationKey(groupID, invitationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("invite:group:%s:%s", groupID, invitationID))
}

func groupInvitationPrefix(groupID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("invite:group:%s:", groupID))
}

func pendingInvitationKey(groupID, invitedUserID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("invite:pending:%s:%s", groupID, invitedUserID))
}

func userInvitationKey(invitedUserID, invitationID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("invite:user:%s:%s", invitedUserID, invitationID))
}

func userInvitationPrefix(invitedUserID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("invite:user:%s:", invitedUserID))
}

func messageKey(groupID uuid.UUID, unixNano int64, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", groupID, unixNano, id))
}

func messagePrefix(groupID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", groupID))
}
