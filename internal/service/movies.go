package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/authz"
	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/pkg/log"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

// Входные структуры сервисного слоя.

// CreateMovieInput — создание записи о фильме.
// Владелец здесь отсутствует намеренно: он всегда назначается из актора.
type CreateMovieInput struct {
	Title       string
	Description string
	ReleaseYear int32
	Rating      float64
	Favorite    bool
	WatchStatus models.WatchStatus
}

// UpdateMovieInput — частичное обновление; nil-поле не трогается.
// id/owner/created_at неизменяемы и полей для них нет.
type UpdateMovieInput struct {
	Title       *string
	Description *string
	ReleaseYear *int32
	Rating      *float64
	Favorite    *bool
	WatchStatus *models.WatchStatus
}

// CreateMovie создаёт запись о фильме для актора.
//
// Валидация:
//   - title — непустой, до 120 символов;
//   - movie_rating — 0.00..9.99, не более двух знаков после запятой;
//   - watch_status — из допустимого множества; пустое значение получает
//     дефолт "Not Watched".
//
// Владелец записи — всегда актор, что бы ни пришло от клиента.
func (s *Service) CreateMovie(ctx context.Context, actor uuid.UUID, in CreateMovieInput) (*models.Movie, error) {
	const op = "service.movies.CreateMovie"

	if err := decisionErr(op, authz.Authorize(actor, authz.ActionCreate, authz.MovieClass())); err != nil {
		return nil, err
	}

	title, err := validateTitle(op, in.Title)
	if err != nil {
		return nil, err
	}

	if err := validateRating(op, in.Rating); err != nil {
		return nil, err
	}

	status := in.WatchStatus
	if status == "" {
		status = models.WatchStatusNotWatched
	}
	if !status.Valid() {
		return nil, validationErr(op, "watch_status", "must be one of: Not Watched, Watching, Watched")
	}

	now := time.Now().UTC()
	movie := &models.Movie{
		ID:          uuid.New(),
		OwnerID:     actor,
		Title:       title,
		Description: in.Description,
		ReleaseYear: in.ReleaseYear,
		Rating:      in.Rating,
		Favorite:    in.Favorite,
		WatchStatus: status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.SaveMovie(ctx, movie); err != nil {
		log.From(ctx).Error("save_movie_failed", "op", op, "err", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movie, nil
}

// MovieByID возвращает фильм по ID.
// Чужая запись неотличима от несуществующей (ErrNotFound).
func (s *Service) MovieByID(ctx context.Context, actor, id uuid.UUID) (*models.Movie, error) {
	const op = "service.movies.MovieByID"

	movie, err := s.loadOwned(ctx, op, actor, id, authz.ActionRead)
	if err != nil {
		return nil, err
	}

	return movie, nil
}

// ListMovies возвращает фильмы актора, новые сверху.
// Выборка всегда предварительно ограничена владельцем на уровне SQL;
// никакие параметры клиента не могут её расширить.
func (s *Service) ListMovies(ctx context.Context, actor uuid.UUID) ([]models.Movie, error) {
	const op = "service.movies.ListMovies"

	if err := decisionErr(op, authz.Authorize(actor, authz.ActionList, authz.MovieClass())); err != nil {
		return nil, err
	}

	movies, err := s.storage.MoviesByOwner(ctx, actor)
	if err != nil {
		log.From(ctx).Error("list_movies_failed", "op", op, "err", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movies, nil
}

// UpdateMovie выполняет частичное обновление записи владельца.
func (s *Service) UpdateMovie(ctx context.Context, actor, id uuid.UUID, in UpdateMovieInput) (*models.Movie, error) {
	const op = "service.movies.UpdateMovie"

	if _, err := s.loadOwned(ctx, op, actor, id, authz.ActionUpdate); err != nil {
		return nil, err
	}

	upd := storage.MovieUpdate{
		Description: in.Description,
		ReleaseYear: in.ReleaseYear,
		Favorite:    in.Favorite,
	}

	if in.Title != nil {
		title, err := validateTitle(op, *in.Title)
		if err != nil {
			return nil, err
		}
		upd.Title = &title
	}

	if in.Rating != nil {
		if err := validateRating(op, *in.Rating); err != nil {
			return nil, err
		}
		upd.Rating = in.Rating
	}

	if in.WatchStatus != nil {
		if !in.WatchStatus.Valid() {
			return nil, validationErr(op, "watch_status", "must be one of: Not Watched, Watching, Watched")
		}
		upd.WatchStatus = in.WatchStatus
	}

	movie, err := s.storage.UpdateMovie(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("update_movie_failed", "op", op, "err", err.Error())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movie, nil
}

// DeleteMovie удаляет запись владельца.
func (s *Service) DeleteMovie(ctx context.Context, actor, id uuid.UUID) error {
	const op = "service.movies.DeleteMovie"

	if _, err := s.loadOwned(ctx, op, actor, id, authz.ActionDelete); err != nil {
		return err
	}

	if err := s.storage.DeleteMovie(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		log.From(ctx).Error("delete_movie_failed", "op", op, "err", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PosterUploadURL выдаёт presigned PUT URL для загрузки постера фильма.
// Доступно только владельцу записи.
func (s *Service) PosterUploadURL(ctx context.Context, actor, id uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service.movies.PosterUploadURL"

	if s.posters == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnimplemented)
	}

	if _, err := s.loadOwned(ctx, op, actor, id, authz.ActionUpdate); err != nil {
		return nil, err
	}

	info, err := s.posters.PosterUploadURL(ctx, id, contentType, contentLength)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			return nil, validationErr(op, "content_type", "unsupported type or size")
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return info, nil
}

// ConfirmPosterUpload подтверждает загрузку постера и сохраняет
// ключ/публичный URL в записи фильма.
func (s *Service) ConfirmPosterUpload(ctx context.Context, actor, id uuid.UUID, posterKey string) (*models.Movie, error) {
	const op = "service.movies.ConfirmPosterUpload"

	if s.posters == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnimplemented)
	}

	if _, err := s.loadOwned(ctx, op, actor, id, authz.ActionUpdate); err != nil {
		return nil, err
	}

	publicURL, err := s.posters.CheckPosterUpload(ctx, id, posterKey)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, validationErr(op, "poster_key", "object was not uploaded")
		case errors.Is(err, storage.ErrInvalidArgument):
			return nil, validationErr(op, "poster_key", "invalid object key")
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	movie, err := s.storage.UpdateMovie(ctx, id, storage.MovieUpdate{
		PosterKey: &posterKey,
		PosterURL: &publicURL,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movie, nil
}

// loadOwned загружает фильм и прогоняет решение политики для действия.
func (s *Service) loadOwned(ctx context.Context, op string, actor, id uuid.UUID, action authz.Action) (*models.Movie, error) {
	movie, err := s.storage.MovieByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Анонимный актор получает 401 даже для несуществующей записи.
			if actor == uuid.Nil {
				return nil, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
			}

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := decisionErr(op, authz.Authorize(actor, action, authz.Movie(movie.OwnerID))); err != nil {
		return nil, err
	}

	return movie, nil
}

// validateTitle нормализует и проверяет название.
func validateTitle(op, raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", validationErr(op, "title", "must not be empty")
	}

	if len([]rune(title)) > 120 {
		return "", validationErr(op, "title", "must be at most 120 characters")
	}

	return title, nil
}

// validateRating проверяет бюджет NUMERIC(3,2): 0.00..9.99,
// не более двух знаков после запятой.
func validateRating(op string, rating float64) error {
	if rating < 0 || rating > 9.99 {
		return validationErr(op, "movie_rating", "must be between 0.00 and 9.99")
	}

	scaled := rating * 100
	if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
		return validationErr(op, "movie_rating", "must have at most two decimal places")
	}

	return nil
}
