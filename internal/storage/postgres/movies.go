package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

const movieColumns = "id, owner_id, title, description, release_year, movie_rating, favorite, watch_status, poster_key, poster_url, created_at, updated_at"

func scanMovie(row pgx.Row) (*models.Movie, error) {
	var movie models.Movie
	err := row.Scan(
		&movie.ID,
		&movie.OwnerID,
		&movie.Title,
		&movie.Description,
		&movie.ReleaseYear,
		&movie.Rating,
		&movie.Favorite,
		&movie.WatchStatus,
		&movie.PosterKey,
		&movie.PosterURL,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &movie, nil
}

// SaveMovie создаёт новую запись о фильме.
func (s *Storage) SaveMovie(ctx context.Context, movie *models.Movie) error {
	const op = "storage.postgres.SaveMovie"

	query := `
		INSERT INTO movies(id, owner_id, title, description, release_year, movie_rating, favorite, watch_status, poster_key, poster_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.Exec(ctx, query,
		movie.ID,
		movie.OwnerID,
		movie.Title,
		movie.Description,
		movie.ReleaseYear,
		movie.Rating,
		movie.Favorite,
		movie.WatchStatus,
		movie.PosterKey,
		movie.PosterURL,
		movie.CreatedAt,
		movie.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MovieByID находит фильм по ID (без фильтра по владельцу —
// проверка владения выполняется сервисным слоем).
func (s *Storage) MovieByID(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	const op = "storage.postgres.MovieByID"

	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)

	movie, err := scanMovie(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movie, nil
}

// MoviesByOwner возвращает фильмы владельца, новые сверху.
func (s *Storage) MoviesByOwner(ctx context.Context, owner uuid.UUID) ([]models.Movie, error) {
	const op = "storage.postgres.MoviesByOwner"

	query := fmt.Sprintf(`
		SELECT %s FROM movies
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, movieColumns)

	rows, err := s.db.Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		movies = append(movies, *movie)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movies, nil
}

// UpdateMovie применяет частичное обновление и возвращает свежую запись.
// owner_id и created_at в SET не попадают никогда.
func (s *Storage) UpdateMovie(ctx context.Context, id uuid.UUID, upd storage.MovieUpdate) (*models.Movie, error) {
	const op = "storage.postgres.UpdateMovie"

	set := []string{}
	args := []any{}
	idx := 1

	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.ReleaseYear != nil {
		add("release_year", *upd.ReleaseYear)
	}
	if upd.Rating != nil {
		add("movie_rating", *upd.Rating)
	}
	if upd.Favorite != nil {
		add("favorite", *upd.Favorite)
	}
	if upd.WatchStatus != nil {
		add("watch_status", *upd.WatchStatus)
	}
	if upd.PosterKey != nil {
		add("poster_key", *upd.PosterKey)
	}
	if upd.PosterURL != nil {
		add("poster_url", *upd.PosterURL)
	}

	add("updated_at", time.Now().UTC())

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE movies SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(set, ", "), idx, movieColumns)

	movie, err := scanMovie(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return movie, nil
}

// DeleteMovie удаляет фильм по ID.
func (s *Storage) DeleteMovie(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteMovie"

	tag, err := s.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
