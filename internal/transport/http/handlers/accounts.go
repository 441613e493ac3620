package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/transport/http/models"
	"github.com/pribylovaa/go-movie-tracker/internal/transport/httperr"
)

// accountID извлекает и парсит {id} из пути.
func accountID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errBadRequest()
	}

	return id, nil
}

// ListAccounts всегда отклоняется политикой (403);
// маршрут существует ради единообразия контракта.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	_, err := h.Service.ListAccounts(r.Context(), actorID(r))
	httperr.WriteError(w, r, err)
}

// AccountByID возвращает аккаунт; политика — self-only.
func (h *Handlers) AccountByID(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	account, err := h.Service.AccountByID(r.Context(), actorID(r), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AccountFrom(account))
}

// UpdateAccount — частичное обновление собственного профиля.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in models.UpdateAccountRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	account, err := h.Service.UpdateAccount(r.Context(), actorID(r), id, in.ToInput())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AccountFrom(account))
}

// DeleteAccount удаляет собственный аккаунт вместе с фильмами и сессиями.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if err := h.Service.DeleteAccount(r.Context(), actorID(r), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
