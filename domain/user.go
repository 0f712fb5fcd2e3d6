// Package domain contains core concepts of the chat system.
// This file defines User reference data.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is read-only reference data for the messaging core.
// The password hash is opaque here; only the auth layer interprets it.
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
