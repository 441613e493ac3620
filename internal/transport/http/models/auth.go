// Входные/выходные модели REST-слоя, зеркалят сервисные структуры.
package models

import (
	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/service"
)

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Username:        r.Username,
		Email:           r.Email,
		Password:        r.Password,
		PasswordConfirm: r.PasswordConfirm,
	}
}

type LoginRequest struct {
	// Login принимает username либо email.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RevokeResponse struct {
	Ok bool `json:"ok"`
}

type GoogleLoginRequest struct {
	Code string `json:"code"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

func (r ChangePasswordRequest) ToInput() service.ChangePasswordInput {
	return service.ChangePasswordInput{
		CurrentPassword:    r.CurrentPassword,
		NewPassword:        r.NewPassword,
		NewPasswordConfirm: r.NewPasswordConfirm,
	}
}

type AuthResponse struct {
	UserID          string `json:"user_id"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	AccessExpiresAt int64  `json:"access_expires_at"` // Unix UTC
}

func AuthFromTokens(userID uuid.UUID, pair *models.TokenPair) AuthResponse {
	return AuthResponse{
		UserID:          userID.String(),
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: pair.AccessExpiresAt.Unix(),
	}
}
