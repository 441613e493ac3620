package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-movie-tracker/internal/config"
	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
	"github.com/pribylovaa/go-movie-tracker/mocks"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "unit-secret",
		AccessTokenTTL:  30 * time.Second,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "movies-service",
		Audience:        []string{"movies-web"},
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	svc := New(st, testCfg())
	return svc, st, ctrl
}

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := hashPassword(pw)
	require.NoError(t, err)
	return h
}

func activeAccount(pw string, t *testing.T) *models.Account {
	t.Helper()
	return &models.Account{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: mustHashPW(t, pw),
		Active:       true,
	}
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Email:           "Alice@Example.com",
		Password:        "Secret123",
		PasswordConfirm: "Secret123",
	}
}

func TestRegisterAccount_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(nil, storage.ErrNotFound)
	st.EXPECT().AccountByEmail(gomock.Any(), "alice@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *models.Account) error {
			require.Equal(t, "alice", a.Username)
			require.Equal(t, "alice@example.com", a.Email) // нормализован к нижнему регистру
			require.NotEmpty(t, a.PasswordHash)
			require.True(t, a.Active)
			return nil
		})

	account, err := svc.RegisterAccount(context.Background(), registerInput())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, account.ID)
	require.Equal(t, "alice@example.com", account.Email)
}

func TestRegisterAccount_PasswordMismatch(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	in := registerInput()
	in.PasswordConfirm = "Different1"

	_, err := svc.RegisterAccount(context.Background(), in)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidArgument)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "password_confirm", verr.Field)
}

func TestRegisterAccount_WeakPassword(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	cases := []struct {
		name string
		pw   string
	}{
		{"too_short", "Ab1"},
		{"no_digit", "Abcdefgh"},
		{"no_letter", "12345678"},
		{"empty", ""},
	}

	for _, tc := range cases {
		in := registerInput()
		in.Password = tc.pw
		in.PasswordConfirm = tc.pw

		_, err := svc.RegisterAccount(context.Background(), in)
		require.Error(t, err, tc.name)
		require.ErrorIs(t, err, ErrInvalidArgument, tc.name)
	}
}

func TestRegisterAccount_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	in := registerInput()
	in.Email = "not-an-email"

	_, err := svc.RegisterAccount(context.Background(), in)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "email", verr.Field)
}

func TestRegisterAccount_UsernameTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().AccountByUsername(gomock.Any(), "alice").
		Return(&models.Account{ID: uuid.New(), Username: "alice"}, nil)

	_, err := svc.RegisterAccount(context.Background(), registerInput())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterAccount_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(nil, storage.ErrNotFound)
	st.EXPECT().AccountByEmail(gomock.Any(), "alice@example.com").
		Return(&models.Account{ID: uuid.New(), Email: "alice@example.com"}, nil)

	_, err := svc.RegisterAccount(context.Background(), registerInput())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterAccount_SaveRace_MapsToConflict(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(nil, storage.ErrNotFound)
	st.EXPECT().AccountByEmail(gomock.Any(), "alice@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := svc.RegisterAccount(context.Background(), registerInput())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginAccount_ByUsername_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	pw := "Secret123"
	account := activeAccount(pw, t)

	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(account, nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	tp, uid, err := svc.LoginAccount(context.Background(), "alice", pw)
	require.NoError(t, err)
	require.Equal(t, account.ID, uid)
	require.NotEmpty(t, tp.AccessToken)
	require.NotEmpty(t, tp.RefreshToken)
	require.WithinDuration(t, time.Now().Add(svc.cfg.AccessTokenTTL), tp.AccessExpiresAt, 2*time.Second)
}

func TestLoginAccount_ByEmail_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	pw := "Secret123"
	account := activeAccount(pw, t)

	// Логин с "@" ищется по email, с нормализацией регистра.
	st.EXPECT().AccountByEmail(gomock.Any(), "alice@example.com").Return(account, nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	_, uid, err := svc.LoginAccount(context.Background(), "Alice@Example.com", pw)
	require.NoError(t, err)
	require.Equal(t, account.ID, uid)
}

func TestLoginAccount_UniformFailures(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()

	// Пустой логин/пароль.
	_, _, err := svc.LoginAccount(ctx, "", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.LoginAccount(ctx, "alice", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Нет такого пользователя.
	st.EXPECT().AccountByUsername(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)
	_, _, err = svc.LoginAccount(ctx, "ghost", "Secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Неверный пароль.
	account := activeAccount("Secret123", t)
	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(account, nil)
	_, _, err = svc.LoginAccount(ctx, "alice", "Wrong1234")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Выключенный аккаунт.
	inactive := activeAccount("Secret123", t)
	inactive.Active = false
	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(inactive, nil)
	_, _, err = svc.LoginAccount(ctx, "alice", "Secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Federated-only аккаунт (пустой хэш) не входит по паролю.
	federated := activeAccount("Secret123", t)
	federated.PasswordHash = ""
	st.EXPECT().AccountByUsername(gomock.Any(), "alice").Return(federated, nil)
	_, _, err = svc.LoginAccount(ctx, "alice", "Secret123")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken_OK_WithRotation(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := activeAccount("Secret123", t)
	plain := "some-refresh-plain"
	hash := refreshHash(plain)

	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash,
		UserID:           account.ID,
		CreatedAt:        time.Now().Add(-time.Hour),
		ExpiresAt:        time.Now().Add(time.Hour),
		Revoked:          false,
	}, nil)
	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)
	st.EXPECT().RevokeRefreshToken(gomock.Any(), hash).Return(true, nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	tp, uid, err := svc.RefreshToken(context.Background(), plain)
	require.NoError(t, err)
	require.Equal(t, account.ID, uid)
	require.NotEmpty(t, tp.AccessToken)
	require.NotEqual(t, plain, tp.RefreshToken)
}

func TestRefreshToken_NotFound_Revoked_Expired(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	plain := "r"
	hash := refreshHash(plain)

	// Не найден -> ErrInvalidToken.
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(nil, storage.ErrNotFound)
	_, _, err := svc.RefreshToken(context.Background(), plain)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Отозван.
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour), Revoked: true,
	}, nil)
	_, _, err = svc.RefreshToken(context.Background(), plain)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Просрочен.
	st.EXPECT().RefreshTokenByHash(gomock.Any(), hash).Return(&models.RefreshToken{
		RefreshTokenHash: hash, UserID: uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute), Revoked: false,
	}, nil)
	_, _, err = svc.RefreshToken(context.Background(), plain)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestRevokeToken_MapErrorsAndOK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	plain := "r"
	hash := refreshHash(plain)

	st.EXPECT().RevokeRefreshToken(gomock.Any(), hash).Return(false, storage.ErrNotFound)
	err := svc.RevokeToken(context.Background(), plain)
	require.ErrorIs(t, err, ErrInvalidToken)

	st.EXPECT().RevokeRefreshToken(gomock.Any(), hash).Return(false, nil)
	err = svc.RevokeToken(context.Background(), plain)
	require.ErrorIs(t, err, ErrTokenRevoked)

	st.EXPECT().RevokeRefreshToken(gomock.Any(), hash).Return(false, errors.New("db down"))
	require.Error(t, svc.RevokeToken(context.Background(), plain))

	st.EXPECT().RevokeRefreshToken(gomock.Any(), hash).Return(true, nil)
	require.NoError(t, svc.RevokeToken(context.Background(), plain))
}

func TestValidateToken_OK_Invalid_Expired(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	uid := uuid.New()
	email := "alice@example.com"

	at, err := svc.generateAccessToken(ctx, uid, email, time.Now().UTC())
	require.NoError(t, err)

	gotUID, gotEmail, err := svc.ValidateToken(ctx, at)
	require.NoError(t, err)
	require.Equal(t, uid, gotUID)
	require.Equal(t, email, gotEmail)

	_, _, err = svc.ValidateToken(ctx, "not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Просроченный: отрицательный TTL формирует истёкший токен.
	cfg := svc.cfg
	cfg.AccessTokenTTL = -10 * time.Second
	svc.cfg = cfg

	at, err = svc.generateAccessToken(ctx, uid, email, time.Now().UTC())
	require.NoError(t, err)
	_, _, err = svc.ValidateToken(ctx, at)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestChangePassword_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := activeAccount("Secret123", t)

	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)
	st.EXPECT().UpdatePasswordHash(gomock.Any(), account.ID, gomock.Any()).Return(nil)

	err := svc.ChangePassword(context.Background(), account.ID, ChangePasswordInput{
		CurrentPassword:    "Secret123",
		NewPassword:        "Changed456",
		NewPasswordConfirm: "Changed456",
	})
	require.NoError(t, err)
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := activeAccount("Secret123", t)
	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	err := svc.ChangePassword(context.Background(), account.ID, ChangePasswordInput{
		CurrentPassword:    "Wrong1234",
		NewPassword:        "Changed456",
		NewPasswordConfirm: "Changed456",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "current_password", verr.Field)
}

func TestChangePassword_ConfirmMismatch(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	account := activeAccount("Secret123", t)
	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)

	err := svc.ChangePassword(context.Background(), account.ID, ChangePasswordInput{
		CurrentPassword:    "Secret123",
		NewPassword:        "Changed456",
		NewPasswordConfirm: "Other789x",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "new_password_confirm", verr.Field)
}

func TestChangePassword_Anonymous(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	err := svc.ChangePassword(context.Background(), uuid.Nil, ChangePasswordInput{})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAccountByID_SelfOnly(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("Secret123", t)

	// Свой аккаунт читается.
	st.EXPECT().AccountByID(gomock.Any(), account.ID).Return(account, nil)
	got, err := svc.AccountByID(ctx, account.ID, account.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, got.ID)

	// Чужой неотличим от несуществующего: storage не трогаем.
	_, err = svc.AccountByID(ctx, uuid.New(), account.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// Аноним получает 401.
	_, err = svc.AccountByID(ctx, uuid.Nil, account.ID)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestListAccounts_AlwaysForbidden(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.ListAccounts(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.ListAccounts(context.Background(), uuid.Nil)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateAccount_OK_And_Conflicts(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	account := activeAccount("Secret123", t)
	newName := "alice2"

	st.EXPECT().UpdateAccount(gomock.Any(), account.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, upd storage.AccountUpdate) (*models.Account, error) {
			require.NotNil(t, upd.Username)
			require.Equal(t, newName, *upd.Username)
			require.Nil(t, upd.Email)
			out := *account
			out.Username = newName
			return &out, nil
		})

	got, err := svc.UpdateAccount(ctx, account.ID, account.ID, UpdateAccountInput{Username: &newName})
	require.NoError(t, err)
	require.Equal(t, newName, got.Username)

	// Конфликт по username.
	st.EXPECT().UpdateAccount(gomock.Any(), account.ID, gomock.Any()).
		Return(nil, storage.ErrAlreadyExists)
	_, err = svc.UpdateAccount(ctx, account.ID, account.ID, UpdateAccountInput{Username: &newName})
	require.ErrorIs(t, err, ErrUsernameTaken)

	// Чужой профиль.
	_, err = svc.UpdateAccount(ctx, uuid.New(), account.ID, UpdateAccountInput{Username: &newName})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAccount_SelfOnly(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()

	st.EXPECT().DeleteAccount(gomock.Any(), id).Return(nil)
	require.NoError(t, svc.DeleteAccount(ctx, id, id))

	require.ErrorIs(t, svc.DeleteAccount(ctx, uuid.New(), id), ErrNotFound)
	require.ErrorIs(t, svc.DeleteAccount(ctx, uuid.Nil, id), ErrUnauthenticated)
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, _, err := svc.GoogleLogin(context.Background(), "code")
	require.ErrorIs(t, err, ErrUnimplemented)
}

func TestGoogleLogin_ExchangeFailed(t *testing.T) {
	t.Parallel()

	svc, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	oa := mocks.NewMockOAuthProvider(ctrl)
	svc.SetOAuthProvider(oa)

	oa.EXPECT().Exchange(gomock.Any(), "bad-code").Return(nil, errors.New("exchange denied"))

	_, _, err := svc.GoogleLogin(context.Background(), "bad-code")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGoogleLogin_ExistingIdentity_OK(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	oa := mocks.NewMockOAuthProvider(ctrl)
	svc.SetOAuthProvider(oa)

	account := activeAccount("Secret123", t)
	ident := &models.ExternalIdentity{
		Provider: "google",
		Subject:  "sub-123",
		Email:    account.Email,
	}

	oa.EXPECT().Exchange(gomock.Any(), "code").Return(ident, nil)
	st.EXPECT().AccountByIdentity(gomock.Any(), "google", "sub-123").Return(account, nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	tp, uid, err := svc.GoogleLogin(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, account.ID, uid)
	require.NotEmpty(t, tp.AccessToken)
}

func TestGoogleLogin_FirstLogin_LinksByEmail(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	oa := mocks.NewMockOAuthProvider(ctrl)
	svc.SetOAuthProvider(oa)

	account := activeAccount("Secret123", t)
	ident := &models.ExternalIdentity{
		Provider: "google",
		Subject:  "sub-456",
		Email:    account.Email,
	}

	oa.EXPECT().Exchange(gomock.Any(), "code").Return(ident, nil)
	st.EXPECT().AccountByIdentity(gomock.Any(), "google", "sub-456").Return(nil, storage.ErrNotFound)
	st.EXPECT().AccountByEmail(gomock.Any(), account.Email).Return(account, nil)
	st.EXPECT().LinkIdentity(gomock.Any(), "google", "sub-456", account.ID).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	_, uid, err := svc.GoogleLogin(context.Background(), "code")
	require.NoError(t, err)
	require.Equal(t, account.ID, uid)
}

func TestGoogleLogin_FirstLogin_CreatesAccount(t *testing.T) {
	t.Parallel()

	svc, st, ctrl := newSvc(t)
	defer ctrl.Finish()

	oa := mocks.NewMockOAuthProvider(ctrl)
	svc.SetOAuthProvider(oa)

	ident := &models.ExternalIdentity{
		Provider: "google",
		Subject:  "sub-789",
		Email:    "newcomer@example.com",
	}

	oa.EXPECT().Exchange(gomock.Any(), "code").Return(ident, nil)
	st.EXPECT().AccountByIdentity(gomock.Any(), "google", "sub-789").Return(nil, storage.ErrNotFound)
	st.EXPECT().AccountByEmail(gomock.Any(), "newcomer@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SaveAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *models.Account) error {
			require.Equal(t, "newcomer", a.Username)
			require.Empty(t, a.PasswordHash) // federated-only: входа по паролю нет
			return nil
		})
	st.EXPECT().LinkIdentity(gomock.Any(), "google", "sub-789", gomock.Any()).Return(nil)
	st.EXPECT().SaveRefreshToken(gomock.Any(), gomock.Any()).Return(nil)

	_, uid, err := svc.GoogleLogin(context.Background(), "code")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, uid)
}
