package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken — серверное представление refresh-токена.
// Хранится только SHA-256-хэш секрета; сам секрет известен лишь клиенту.
type RefreshToken struct {
	RefreshTokenHash string
	UserID           uuid.UUID
	CreatedAt        time.Time
	ExpiresAt        time.Time
	Revoked          bool
}
