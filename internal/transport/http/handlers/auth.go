package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-movie-tracker/internal/transport/http/models"
	"github.com/pribylovaa/go-movie-tracker/internal/transport/httperr"
)

// RegisterAccount создаёт аккаунт. Токены не выпускаются —
// клиент после регистрации выполняет обычный вход.
func (h *Handlers) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	account, err := h.Service.RegisterAccount(r.Context(), in.ToInput())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.AccountFrom(account))
}

// LoginAccount выполняет вход по username/email и паролю.
func (h *Handlers) LoginAccount(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	pair, userID, err := h.Service.LoginAccount(r.Context(), in.Login, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthFromTokens(userID, pair))
}

// RefreshToken ротирует пару токенов по refresh-токену.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in models.RefreshRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	pair, userID, err := h.Service.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthFromTokens(userID, pair))
}

// RevokeToken отзывает refresh-токен (logout).
func (h *Handlers) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var in models.RevokeRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	if err := h.Service.RevokeToken(r.Context(), in.RefreshToken); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.RevokeResponse{Ok: true})
}

// GoogleLogin обменивает authorization code на локальную сессию.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var in models.GoogleLoginRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	pair, userID, err := h.Service.GoogleLogin(r.Context(), in.Code)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthFromTokens(userID, pair))
}

// ChangePassword меняет пароль актора с подтверждением текущего.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in models.ChangePasswordRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	if err := h.Service.ChangePassword(r.Context(), actorID(r), in.ToInput()); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CurrentAccount возвращает аккаунт актора.
func (h *Handlers) CurrentAccount(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)

	account, err := h.Service.CurrentAccount(r.Context(), actor)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AccountFrom(account))
}
