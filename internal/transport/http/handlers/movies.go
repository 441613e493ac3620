package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/transport/http/models"
	"github.com/pribylovaa/go-movie-tracker/internal/transport/httperr"
)

// movieID извлекает и парсит {id} из пути.
func movieID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errBadRequest()
	}

	return id, nil
}

// ListMovies возвращает фильмы актора, новые сверху.
func (h *Handlers) ListMovies(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListMovies(r.Context(), actorID(r))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MoviesFrom(list))
}

// CreateMovie создаёт запись о фильме; владелец — всегда актор.
func (h *Handlers) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var in models.CreateMovieRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	movie, err := h.Service.CreateMovie(r.Context(), actorID(r), in.ToInput())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.MovieFrom(movie))
}

// MovieByID возвращает запись по ID; чужая неотличима от несуществующей.
func (h *Handlers) MovieByID(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	movie, err := h.Service.MovieByID(r.Context(), actorID(r), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MovieFrom(movie))
}

// ReplaceMovie — полная замена записи (PUT): каждое поле считается присланным.
func (h *Handlers) ReplaceMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in models.CreateMovieRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	movie, err := h.Service.UpdateMovie(r.Context(), actorID(r), id, in.ToFullInput())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MovieFrom(movie))
}

// UpdateMovie — частичное обновление записи (PATCH).
func (h *Handlers) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in models.UpdateMovieRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	movie, err := h.Service.UpdateMovie(r.Context(), actorID(r), id, in.ToInput())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MovieFrom(movie))
}

// DeleteMovie удаляет запись по ID.
func (h *Handlers) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if err := h.Service.DeleteMovie(r.Context(), actorID(r), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PosterPresign выдаёт presigned PUT URL для загрузки постера.
func (h *Handlers) PosterPresign(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in models.PosterPresignRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	info, err := h.Service.PosterUploadURL(r.Context(), actorID(r), id, in.ContentType, in.ContentLength)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.PosterPresignFrom(info))
}

// PosterConfirm подтверждает загрузку постера и возвращает обновлённую запись.
func (h *Handlers) PosterConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in models.PosterConfirmRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, errBadRequest())
		return
	}

	movie, err := h.Service.ConfirmPosterUpload(r.Context(), actorID(r), id, in.PosterKey)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MovieFrom(movie))
}
