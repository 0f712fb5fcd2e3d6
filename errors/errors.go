package errors

import "fmt"

var (
	// Authorization
	ErrNotMember = fmt.Errorf("user is not a member of this group")

	// Absence (also used when the caller does not own the entity,
	// to avoid leaking its existence)
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrInvitationNotFound = fmt.Errorf("invitation not found or already handled")

	// Uniqueness violations
	ErrUsernameExists   = fmt.Errorf("username already exists")
	ErrGroupNameExists  = fmt.Errorf("group name already exists")
	ErrAlreadyMember    = fmt.Errorf("user is already a member of this group")
	ErrInvitationExists = fmt.Errorf("an invitation for this user to this group already exists")

	// Input
	ErrCannotInviteSelf = fmt.Errorf("a user cannot invite themselves")
	ErrInvalidPassword  = fmt.Errorf("password does not meet the policy")
	ErrInvalidUsername  = fmt.Errorf("username does not meet the policy")
	ErrEmptyContent     = fmt.Errorf("message content is empty")
	ErrContentTooLong   = fmt.Errorf("message content exceeds the maximum length")

	// Auth
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrInvalidToken       = fmt.Errorf("invalid authentication token")
	ErrTokenGeneration    = fmt.Errorf("failed to generate token")

	// Sessions
	ErrSessionClosed   = fmt.Errorf("session is closed")
	ErrSessionOverflow = fmt.Errorf("session outbound queue overflow")

	// Supervision
	ErrWorkerPanic = fmt.Errorf("worker panic")
)
