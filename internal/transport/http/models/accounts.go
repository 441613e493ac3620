package models

import (
	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/service"
)

// AccountView — публичное представление аккаунта.
// Поле идентификатора называется "pk" — исторический контракт фронта.
type AccountView struct {
	PK        string `json:"pk"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"` // Unix UTC
}

func AccountFrom(a *models.Account) AccountView {
	return AccountView{
		PK:        a.ID.String(),
		Username:  a.Username,
		Email:     a.Email,
		CreatedAt: a.CreatedAt.Unix(),
	}
}

// UpdateAccountRequest — частичное обновление профиля;
// отсутствующее поле не трогается.
type UpdateAccountRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func (r UpdateAccountRequest) ToInput() service.UpdateAccountInput {
	return service.UpdateAccountInput{
		Username: r.Username,
		Email:    r.Email,
	}
}
