package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

// TestIntegration_SaveAccount_And_Lookups_OK — happy-path:
// сохранение аккаунта и последующий поиск по email (CITEXT, регистронезависимо),
// username и ID.
func TestIntegration_SaveAccount_And_Lookups_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	account := mustAccount(t, st, "alice", "Alice@Example.Com")

	gotByEmail, err := st.AccountByEmail(context.Background(), strings.ToLower(account.Email))
	require.NoError(t, err)
	require.Equal(t, account.ID, gotByEmail.ID)
	require.WithinDuration(t, account.CreatedAt, gotByEmail.CreatedAt, time.Second)

	gotByUsername, err := st.AccountByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, account.ID, gotByUsername.ID)

	gotByID, err := st.AccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, account.Username, gotByID.Username)
	require.True(t, gotByID.Active)
}

// TestIntegration_SaveAccount_UniqueEmail_CaseInsensitive_Violation — конфликт
// уникальности по email при различии только в регистре, ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveAccount_UniqueEmail_CaseInsensitive_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	mustAccount(t, st, "bob", "bob@example.com")

	now := time.Now().UTC()
	dup := &models.Account{
		ID:           uuid.New(),
		Username:     "bob2",
		Email:        "BOB@EXAMPLE.COM", // тот же email, другой регистр
		PasswordHash: "h2",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := st.SaveAccount(context.Background(), dup)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_SaveAccount_UniqueUsername_Violation — конфликт уникальности
// по username, ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveAccount_UniqueUsername_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	mustAccount(t, st, "carol", "carol@example.com")

	now := time.Now().UTC()
	dup := &models.Account{
		ID:           uuid.New(),
		Username:     "carol", // тот же username
		Email:        "carol2@example.com",
		PasswordHash: "h2",
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := st.SaveAccount(context.Background(), dup)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_AccountLookups_NotFound — поиск отсутствующих записей,
// ожидаем storage.ErrNotFound.
func TestIntegration_AccountLookups_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.AccountByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.AccountByUsername(context.Background(), "ghost")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.AccountByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UpdateAccount_PartialSet — частичное обновление: меняется только
// username, email остаётся прежним, updated_at двигается вперёд.
func TestIntegration_UpdateAccount_PartialSet(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	account := mustAccount(t, st, "dave", "dave@example.com")

	newUsername := "dave_new"
	got, err := st.UpdateAccount(context.Background(), account.ID, storage.AccountUpdate{
		Username: &newUsername,
	})
	require.NoError(t, err)
	require.Equal(t, "dave_new", got.Username)
	require.Equal(t, account.Email, got.Email)
	require.True(t, got.UpdatedAt.After(account.UpdatedAt) || got.UpdatedAt.Equal(account.UpdatedAt))
}

// TestIntegration_UpdateAccount_EmailConflict — обновление email в занятое значение,
// ожидаем storage.ErrAlreadyExists.
func TestIntegration_UpdateAccount_EmailConflict(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	mustAccount(t, st, "erin", "erin@example.com")
	other := mustAccount(t, st, "frank", "frank@example.com")

	taken := "ERIN@example.com"
	_, err := st.UpdateAccount(context.Background(), other.ID, storage.AccountUpdate{
		Email: &taken,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_UpdatePasswordHash_OK_And_NotFound — замена парольного хэша
// и поведение для отсутствующего аккаунта.
func TestIntegration_UpdatePasswordHash_OK_And_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	account := mustAccount(t, st, "grace", "grace@example.com")

	require.NoError(t, st.UpdatePasswordHash(context.Background(), account.ID, "new-hash"))

	got, err := st.AccountByID(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)

	err = st.UpdatePasswordHash(context.Background(), uuid.New(), "x")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_DeleteAccount_CascadesMoviesAndTokens — удаление аккаунта
// каскадом удаляет его фильмы и refresh-токены.
func TestIntegration_DeleteAccount_CascadesMoviesAndTokens(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	account := mustAccount(t, st, "heidi", "heidi@example.com")
	movie := mustMovie(t, st, account.ID, "Solaris", time.Now().UTC())

	now := time.Now().UTC()
	token := &models.RefreshToken{
		RefreshTokenHash: "cascade-hash",
		UserID:           account.ID,
		CreatedAt:        now,
		ExpiresAt:        now.Add(time.Hour),
	}
	require.NoError(t, st.SaveRefreshToken(context.Background(), token))

	require.NoError(t, st.DeleteAccount(context.Background(), account.ID))

	_, err := st.AccountByID(context.Background(), account.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.MovieByID(context.Background(), movie.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.RefreshTokenByHash(context.Background(), token.RefreshTokenHash)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_AccountQueries_ContextCanceled — отменённый контекст должен
// «просочиться» в ошибки чтения как context.Canceled.
func TestIntegration_AccountQueries_ContextCanceled(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // отменяем заранее

	_, err := st.AccountByEmail(ctx, "user@example.com")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)

	_, err = st.AccountByID(ctx, uuid.New())
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
