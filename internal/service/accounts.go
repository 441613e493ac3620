package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-movie-tracker/internal/authz"
	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/pkg/log"
	"github.com/pribylovaa/go-movie-tracker/internal/pkg/redact"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

// Входные структуры сервисного слоя.

// RegisterInput — регистрация аккаунта.
// Пароль и подтверждение должны совпадать байт в байт.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// UpdateAccountInput — частичное обновление профиля; nil-поле не трогается.
type UpdateAccountInput struct {
	Username *string
	Email    *string
}

// ChangePasswordInput — смена пароля с подтверждением текущего.
type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	NewPasswordConfirm string
}

// RegisterAccount регистрирует новый аккаунт.
//
// Валидация:
//   - username — непустой, до 150 символов;
//   - email — корректный адрес, нормализуется к нижнему регистру;
//   - password и password_confirm обязаны совпадать точно, иначе
//     ValidationError на поле password_confirm;
//   - пароль — не короче 8 символов, минимум одна буква и одна цифра.
//
// Поведение/ошибки:
//   - ErrUsernameTaken / ErrEmailTaken — конфликт уникальности;
//   - возвращает созданный аккаунт; токены здесь не выпускаются —
//     клиент выполняет обычный вход.
func (s *Service) RegisterAccount(ctx context.Context, in RegisterInput) (*models.Account, error) {
	const op = "service.accounts.RegisterAccount"

	lg := log.From(ctx)

	username, err := validateUsername(in.Username)
	if err != nil {
		return nil, err
	}

	normEmail, err := validateEmail(op, in.Email)
	if err != nil {
		return nil, err
	}

	if in.Password != in.PasswordConfirm {
		return nil, validationErr(op, "password_confirm", "passwords do not match")
	}

	if err := validatePassword(op, "password", in.Password); err != nil {
		return nil, err
	}

	if _, err := s.storage.AccountByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.storage.AccountByEmail(ctx, normEmail); err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        normEmail,
		PasswordHash: hashed,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// Гонка между предпроверкой и INSERT; уникальность гарантирует БД.
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("account_registered",
		"account_id", account.ID.String(),
		"email", redact.Email(account.Email),
	)

	return account, nil
}

// LoginAccount выполняет вход по логину (username или email) и паролю.
// Все отказы наружу одинаковы (ErrInvalidCredentials) — никакой энумерации
// имён пользователей по коду ответа.
func (s *Service) LoginAccount(ctx context.Context, login, password string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.accounts.LoginAccount"

	login = strings.TrimSpace(login)
	if login == "" || len(password) == 0 {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	var (
		account *models.Account
		err     error
	)
	if strings.Contains(login, "@") {
		account, err = s.storage.AccountByEmail(ctx, strings.ToLower(login))
	} else {
		account, err = s.storage.AccountByUsername(ctx, login)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	// Federated-only аккаунт (пустой хэш) и выключенный аккаунт
	// не различимы снаружи от неверного пароля.
	if !account.Active || account.PasswordHash == "" || !checkPassword(account.PasswordHash, password) {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return s.issueTokenPair(ctx, account, "")
}

// RefreshToken обновляет пару токенов по refresh-токену с ротацией.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.accounts.RefreshToken"

	token, err := s.validateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	account, err := s.storage.AccountByID(ctx, token.UserID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.issueTokenPair(ctx, account, refreshHash(refreshToken))
}

// RevokeToken отзывает refresh-токен (logout).
func (s *Service) RevokeToken(ctx context.Context, refreshToken string) error {
	const op = "service.accounts.RevokeToken"

	revoked, err := s.revokeRefreshHash(ctx, refreshHash(refreshToken))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if !revoked {
		return fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}

	return nil
}

// ValidateToken проверяет access-токен и возвращает актора.
func (s *Service) ValidateToken(ctx context.Context, accessToken string) (uuid.UUID, string, error) {
	const op = "service.accounts.ValidateToken"

	uid, email, err := s.validateAccessToken(accessToken)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return uid, email, nil
}

// ChangePassword меняет пароль актора.
//
// Правила (как в профильной форме оригинального продукта):
//   - текущий пароль обязан подойти, иначе ValidationError на current_password;
//   - новый пароль и подтверждение совпадают, иначе ValidationError
//     на new_password_confirm;
//   - новый пароль проходит ту же политику сложности, что и при регистрации.
//
// Отзыв других сессий в объём операции не входит.
func (s *Service) ChangePassword(ctx context.Context, actor uuid.UUID, in ChangePasswordInput) error {
	const op = "service.accounts.ChangePassword"

	if actor == uuid.Nil {
		return fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	account, err := s.storage.AccountByID(ctx, actor)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if account.PasswordHash == "" || !checkPassword(account.PasswordHash, in.CurrentPassword) {
		return validationErr(op, "current_password", "current password is incorrect")
	}

	if in.NewPassword != in.NewPasswordConfirm {
		return validationErr(op, "new_password_confirm", "passwords do not match")
	}

	if err := validatePassword(op, "new_password", in.NewPassword); err != nil {
		return err
	}

	hashed, err := hashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.UpdatePasswordHash(ctx, account.ID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("password_changed", "account_id", account.ID.String())

	return nil
}

// CurrentAccount возвращает аккаунт актора.
func (s *Service) CurrentAccount(ctx context.Context, actor uuid.UUID) (*models.Account, error) {
	return s.AccountByID(ctx, actor, actor)
}

// AccountByID возвращает аккаунт по ID с учётом политики self-only.
func (s *Service) AccountByID(ctx context.Context, actor, id uuid.UUID) (*models.Account, error) {
	const op = "service.accounts.AccountByID"

	if err := decisionErr(op, authz.Authorize(actor, authz.ActionRead, authz.Account(id))); err != nil {
		return nil, err
	}

	account, err := s.storage.AccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}

// ListAccounts всегда отклоняется политикой: перечисление всех аккаунтов
// не является легитимной операцией. Метод существует, чтобы решение
// оставалось в одном месте, а транспорт не знал политику.
func (s *Service) ListAccounts(ctx context.Context, actor uuid.UUID) ([]models.Account, error) {
	const op = "service.accounts.ListAccounts"

	return nil, decisionErr(op, authz.Authorize(actor, authz.ActionList, authz.AccountClass()))
}

// UpdateAccount выполняет частичное обновление собственного профиля.
func (s *Service) UpdateAccount(ctx context.Context, actor, id uuid.UUID, in UpdateAccountInput) (*models.Account, error) {
	const op = "service.accounts.UpdateAccount"

	if err := decisionErr(op, authz.Authorize(actor, authz.ActionUpdate, authz.Account(id))); err != nil {
		return nil, err
	}

	upd := storage.AccountUpdate{}

	if in.Username != nil {
		username, err := validateUsername(*in.Username)
		if err != nil {
			return nil, err
		}
		upd.Username = &username
	}

	if in.Email != nil {
		normEmail, err := validateEmail(op, *in.Email)
		if err != nil {
			return nil, err
		}
		upd.Email = &normEmail
	}

	account, err := s.storage.UpdateAccount(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			if upd.Username != nil {
				return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
			}

			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return account, nil
}

// DeleteAccount удаляет собственный аккаунт; фильмы, refresh-токены и
// OAuth-связки удаляются каскадно на уровне схемы.
func (s *Service) DeleteAccount(ctx context.Context, actor, id uuid.UUID) error {
	const op = "service.accounts.DeleteAccount"

	if err := decisionErr(op, authz.Authorize(actor, authz.ActionDelete, authz.Account(id))); err != nil {
		return err
	}

	if err := s.storage.DeleteAccount(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("account_deleted", "account_id", id.String())

	return nil
}

// GoogleLogin обменивает authorization code на локальную сессию.
// При первом входе создаёт аккаунт и привязывает к нему идентичность;
// при совпадении подтверждённого email с существующим аккаунтом —
// привязывает идентичность к нему.
func (s *Service) GoogleLogin(ctx context.Context, code string) (*models.TokenPair, uuid.UUID, error) {
	const op = "service.accounts.GoogleLogin"

	lg := log.From(ctx)

	if s.oauth == nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrUnimplemented)
	}

	if strings.TrimSpace(code) == "" {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	ident, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		lg.Warn("oauth_exchange_failed", "err", err.Error())
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	account, err := s.storage.AccountByIdentity(ctx, ident.Provider, ident.Subject)
	if err == nil {
		return s.issueTokenPair(ctx, account, "")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	account, err = s.resolveFederatedAccount(ctx, ident)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.LinkIdentity(ctx, ident.Provider, ident.Subject, account.ID); err != nil {
		return nil, uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("federated_login_linked",
		"provider", ident.Provider,
		"account_id", account.ID.String(),
	)

	return s.issueTokenPair(ctx, account, "")
}

// resolveFederatedAccount находит аккаунт по подтверждённому email провайдера
// или создаёт новый с производным username.
func (s *Service) resolveFederatedAccount(ctx context.Context, ident *models.ExternalIdentity) (*models.Account, error) {
	const op = "service.accounts.resolveFederatedAccount"

	normEmail, err := validateEmail(op, ident.Email)
	if err != nil {
		return nil, err
	}

	if account, err := s.storage.AccountByEmail(ctx, normEmail); err == nil {
		return account, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	base := usernameFromEmail(normEmail)

	// Несколько попыток с суффиксом на случай занятого имени.
	for attempt := 0; attempt < 5; attempt++ {
		username := base
		if attempt > 0 {
			username = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		}

		now := time.Now().UTC()
		account := &models.Account{
			ID:        uuid.New(),
			Username:  username,
			Email:     normEmail,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := s.storage.SaveAccount(ctx, account); err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				continue
			}

			return nil, err
		}

		return account, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrInternal)
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.accounts.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(op, raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", validationErr(op, "email", "must not be empty")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", validationErr(op, "email", "invalid email format")
	}

	return strings.ToLower(email), nil
}

// validateUsername нормализует и проверяет имя пользователя.
func validateUsername(raw string) (string, error) {
	const op = "service.accounts.validateUsername"

	username := strings.TrimSpace(raw)
	if username == "" {
		return "", validationErr(op, "username", "must not be empty")
	}

	if len([]rune(username)) > 150 {
		return "", validationErr(op, "username", "must be at most 150 characters")
	}

	return username, nil
}

// validatePassword проверяет минимальные требования к паролю:
// длина >= 8, хотя бы одна буква и одна цифра.
func validatePassword(op, field, pw string) error {
	if len(pw) == 0 {
		return validationErr(op, field, "must not be empty")
	}

	if len([]rune(pw)) < 8 {
		return validationErr(op, field, "must be at least 8 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLetter || !hasDigit {
		return validationErr(op, field, "must contain at least one letter and one digit")
	}

	return nil
}

// usernameFromEmail выводит имя пользователя из локальной части адреса.
func usernameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		local = email[:i]
	}

	local = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			return r
		}
		return '-'
	}, local)

	if local == "" {
		local = "user"
	}

	return local
}
