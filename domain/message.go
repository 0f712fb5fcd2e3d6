// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
// A nil SenderID denotes a system-generated message (join/leave notices).
// Messages are append-only; the core never mutates or deletes them.
type Message struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	SenderID  *uuid.UUID
	Content   string
	CreatedAt time.Time
}

// System builds a system message for a group. The sender stays nil so
// clients can distinguish it from user traffic.
func System(groupID uuid.UUID, content string) Message {
	return Message{
		ID:        uuid.New(),
		GroupID:   groupID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
