package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

// AccountByIdentity находит аккаунт по внешней идентичности (provider, subject).
func (s *Storage) AccountByIdentity(ctx context.Context, provider, subject string) (*models.Account, error) {
	const op = "storage.postgres.AccountByIdentity"

	query := `
		SELECT a.id, a.username, a.email, a.password_hash, a.active, a.created_at, a.updated_at
		FROM accounts a
		JOIN oauth_identities oi ON oi.account_id = a.id
		WHERE oi.provider = $1 AND oi.subject = $2
	`

	account, err := scanAccount(s.db.QueryRow(ctx, query, provider, subject))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}

// LinkIdentity привязывает внешнюю идентичность к аккаунту.
// Повторная привязка той же пары (provider, subject) — ErrAlreadyExists.
func (s *Storage) LinkIdentity(ctx context.Context, provider, subject string, accountID uuid.UUID) error {
	const op = "storage.postgres.LinkIdentity"

	query := `
		INSERT INTO oauth_identities(provider, subject, account_id, created_at)
		VALUES ($1, $2, $3, now())
	`

	_, err := s.db.Exec(ctx, query, provider, subject, accountID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
