// Package models содержит доменные сущности movie-tracker.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account — учётная запись пользователя.
//
// Важно:
//   - PasswordHash — bcrypt-хэш; пустая строка означает, что аккаунт создан
//     через federated-вход и парольная аутентификация для него недоступна.
//   - PasswordHash никогда не попадает в наружные представления (см. transport).
//   - Active — мягкое отключение аккаунта без удаления записей.
type Account struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExternalIdentity — личность пользователя у стороннего OAuth-провайдера.
// Subject — стабильный идентификатор внутри провайдера (у Google — "sub").
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}
