package models

import (
	dmodels "github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/service"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

// MovieView — публичное представление записи о фильме.
type MovieView struct {
	ID          string  `json:"id"`
	Owner       string  `json:"owner"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ReleaseYear int32   `json:"release_year"`
	Rating      float64 `json:"movie_rating"`
	Favorite    bool    `json:"favorite"`
	WatchStatus string  `json:"watch_status"`
	PosterURL   string  `json:"poster_url,omitempty"`
	CreatedAt   int64   `json:"created_at"` // Unix UTC
}

func MovieFrom(m *dmodels.Movie) MovieView {
	return MovieView{
		ID:          m.ID.String(),
		Owner:       m.OwnerID.String(),
		Title:       m.Title,
		Description: m.Description,
		ReleaseYear: m.ReleaseYear,
		Rating:      m.Rating,
		Favorite:    m.Favorite,
		WatchStatus: string(m.WatchStatus),
		PosterURL:   m.PosterURL,
		CreatedAt:   m.CreatedAt.Unix(),
	}
}

func MoviesFrom(list []dmodels.Movie) []MovieView {
	out := make([]MovieView, 0, len(list))
	for i := range list {
		out = append(out, MovieFrom(&list[i]))
	}

	return out
}

// CreateMovieRequest — создание записи; owner игнорируется и всегда
// назначается из актора сервисным слоем.
type CreateMovieRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ReleaseYear int32   `json:"release_year"`
	Rating      float64 `json:"movie_rating"`
	Favorite    bool    `json:"favorite"`
	WatchStatus string  `json:"watch_status"`
}

func (r CreateMovieRequest) ToInput() service.CreateMovieInput {
	return service.CreateMovieInput{
		Title:       r.Title,
		Description: r.Description,
		ReleaseYear: r.ReleaseYear,
		Rating:      r.Rating,
		Favorite:    r.Favorite,
		WatchStatus: dmodels.WatchStatus(r.WatchStatus),
	}
}

// ToFullInput трактует запрос как полную замену (PUT):
// каждое поле считается присланным.
func (r CreateMovieRequest) ToFullInput() service.UpdateMovieInput {
	status := dmodels.WatchStatus(r.WatchStatus)
	return service.UpdateMovieInput{
		Title:       &r.Title,
		Description: &r.Description,
		ReleaseYear: &r.ReleaseYear,
		Rating:      &r.Rating,
		Favorite:    &r.Favorite,
		WatchStatus: &status,
	}
}

// UpdateMovieRequest — частичное обновление (PATCH);
// отсутствующее поле не трогается.
type UpdateMovieRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	ReleaseYear *int32   `json:"release_year"`
	Rating      *float64 `json:"movie_rating"`
	Favorite    *bool    `json:"favorite"`
	WatchStatus *string  `json:"watch_status"`
}

func (r UpdateMovieRequest) ToInput() service.UpdateMovieInput {
	in := service.UpdateMovieInput{
		Title:       r.Title,
		Description: r.Description,
		ReleaseYear: r.ReleaseYear,
		Rating:      r.Rating,
		Favorite:    r.Favorite,
	}
	if r.WatchStatus != nil {
		status := dmodels.WatchStatus(*r.WatchStatus)
		in.WatchStatus = &status
	}

	return in
}

// PosterPresignRequest — запрос presigned PUT URL для постера.
type PosterPresignRequest struct {
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

// PosterPresignResponse — присланный URL и ключ для последующего confirm.
type PosterPresignResponse struct {
	UploadURL      string            `json:"upload_url"`
	PosterKey      string            `json:"poster_key"`
	ExpiresSec     int64             `json:"expires_sec"`
	RequiredHeader map[string]string `json:"required_headers,omitempty"`
}

func PosterPresignFrom(info *storage.UploadInfo) PosterPresignResponse {
	return PosterPresignResponse{
		UploadURL:      info.UploadURL,
		PosterKey:      info.PosterKey,
		ExpiresSec:     int64(info.Expires.Seconds()),
		RequiredHeader: info.RequiredHeader,
	}
}

// PosterConfirmRequest — подтверждение загрузки постера по ключу.
type PosterConfirmRequest struct {
	PosterKey string `json:"poster_key"`
}
