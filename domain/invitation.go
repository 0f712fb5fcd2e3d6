package domain

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// Terminal reports whether the status can no longer change.
// Accepted and declined invitations are never re-entered.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationDeclined
}

// Invitation is the pending->accepted/declined lifecycle record that gates
// group membership. At most one pending invitation may exist per
// (group, invited user) pair.
type Invitation struct {
	ID            uuid.UUID
	GroupID       uuid.UUID
	InviterID     uuid.UUID
	InvitedUserID uuid.UUID
	Status        InvitationStatus
	CreatedAt     time.Time
}
