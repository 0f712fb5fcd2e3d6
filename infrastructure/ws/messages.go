package ws

import (
	"time"

	"github.com/google/uuid"
)

// Frame types on the wire.
const (
	TypeHistory = "history" // replayed backlog, delivered before any live message
	TypeMessage = "message" // live chat message
	TypeSystem  = "system"  // server-generated notice (join/leave)
	TypeError   = "error"
)

type Frame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientMessage is the only inbound payload: a chat message to publish.
type ClientMessage struct {
	Content string `json:"content"`
}

type MessagePayload struct {
	MessageID      uuid.UUID  `json:"message_id"`
	GroupID        uuid.UUID  `json:"group_id"`
	SenderID       *uuid.UUID `json:"sender_id,omitempty"`
	SenderUsername string     `json:"sender_username,omitempty"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}
