package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named chat group. A group always has at least one member;
// when the last member leaves, the group is deleted.
type Group struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Membership is the durable fact that a user belongs to a group,
// distinct from currently being connected to it.
// A user appears at most once per group.
type Membership struct {
	UserID   uuid.UUID
	GroupID  uuid.UUID
	JoinedAt time.Time
}
