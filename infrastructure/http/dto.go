package http

import (
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserItem `json:"user"`
}

type UserItem struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type GroupItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type InviteRequest struct {
	UserToInviteID uuid.UUID `json:"user_to_invite_id"`
}

type InvitationItem struct {
	ID            uuid.UUID `json:"id"`
	GroupID       uuid.UUID `json:"group_id"`
	InviterID     uuid.UUID `json:"inviter_id"`
	InvitedUserID uuid.UUID `json:"invited_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type MessageItem struct {
	ID        uuid.UUID  `json:"id"`
	GroupID   uuid.UUID  `json:"group_id"`
	SenderID  *uuid.UUID `json:"sender_id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

type MessagesResponse struct {
	Items []MessageItem `json:"items"`
}

type MembersResponse struct {
	Items []UserItem `json:"items"`
}

type InvitationsResponse struct {
	Items []InvitationItem `json:"items"`
}
