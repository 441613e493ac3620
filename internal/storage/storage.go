// Package storage задаёт контракты хранилищ movie-tracker и их сигнальные ошибки.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-movie-tracker/internal/models"
)

//go:generate mockgen -destination=../../mocks/mock_storage.go -package=mocks github.com/pribylovaa/go-movie-tracker/internal/storage Storage,PosterStorage

var (
	// ErrNotFound — запись не найдена (аккаунт/фильм/токен/идентичность).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/email/refresh-token hash).
	ErrAlreadyExists = errors.New("already exists")
	// ErrExpired — сущность просрочена (refresh-token).
	ErrExpired = errors.New("expired")
	// ErrRevoked — сущность отозвана (refresh-token).
	ErrRevoked = errors.New("revoked")
	// ErrInvalidArgument — некорректные параметры на границе хранилища
	// (размер/тип загружаемого постера, чужой ключ объекта).
	ErrInvalidArgument = errors.New("invalid argument")
)

// AccountUpdate — частичное обновление аккаунта: nil-поле не трогается.
type AccountUpdate struct {
	Username *string
	Email    *string
}

// AccountStorage выполняет операции над аккаунтами.
type AccountStorage interface {
	// SaveAccount создаёт новый аккаунт.
	SaveAccount(ctx context.Context, account *models.Account) error
	// AccountByID находит аккаунт по ID.
	AccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	// AccountByEmail находит аккаунт по email (без учёта регистра).
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
	// AccountByUsername находит аккаунт по имени пользователя.
	AccountByUsername(ctx context.Context, username string) (*models.Account, error)
	// UpdateAccount применяет частичное обновление и возвращает свежую запись.
	UpdateAccount(ctx context.Context, id uuid.UUID, upd AccountUpdate) (*models.Account, error)
	// UpdatePasswordHash заменяет парольный хэш аккаунта.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	// DeleteAccount удаляет аккаунт; фильмы, токены и связки OAuth
	// удаляются каскадно на уровне схемы.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// MovieUpdate — частичное обновление фильма: nil-поле не трогается.
// Идентификатор, владелец и created_at намеренно отсутствуют — они неизменяемы.
type MovieUpdate struct {
	Title       *string
	Description *string
	ReleaseYear *int32
	Rating      *float64
	Favorite    *bool
	WatchStatus *models.WatchStatus
	PosterKey   *string
	PosterURL   *string
}

// MovieStorage выполняет операции над фильмами.
type MovieStorage interface {
	// SaveMovie создаёт новую запись о фильме.
	SaveMovie(ctx context.Context, movie *models.Movie) error
	// MovieByID находит фильм по ID вне зависимости от владельца;
	// проверка владения — забота сервисного слоя.
	MovieByID(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	// MoviesByOwner возвращает фильмы владельца, новые сверху.
	MoviesByOwner(ctx context.Context, owner uuid.UUID) ([]models.Movie, error)
	// UpdateMovie применяет частичное обновление и возвращает свежую запись.
	UpdateMovie(ctx context.Context, id uuid.UUID, upd MovieUpdate) (*models.Movie, error)
	// DeleteMovie удаляет фильм по ID.
	DeleteMovie(ctx context.Context, id uuid.UUID) error
}

// RefreshTokenStorage выполняет операции над refresh-токенами.
type RefreshTokenStorage interface {
	// SaveRefreshToken сохраняет новый refresh-токен.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит refresh-токен по его хэшу.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken пытается отозвать refresh-токен;
	// false означает, что токен уже был отозван.
	RevokeRefreshToken(ctx context.Context, hash string) (bool, error)
	// DeleteExpiredTokens удаляет все просроченные токены.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}

// IdentityStorage связывает внешние OAuth-идентичности с аккаунтами.
type IdentityStorage interface {
	// AccountByIdentity находит аккаунт по паре (provider, subject).
	AccountByIdentity(ctx context.Context, provider, subject string) (*models.Account, error)
	// LinkIdentity привязывает идентичность к аккаунту.
	LinkIdentity(ctx context.Context, provider, subject string, accountID uuid.UUID) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	AccountStorage
	MovieStorage
	RefreshTokenStorage
	IdentityStorage
	Close()
}

// UploadInfo — параметры presigned-загрузки постера.
type UploadInfo struct {
	UploadURL      string
	PosterKey      string
	Expires        time.Duration
	RequiredHeader map[string]string
}

// PosterStorage — объектное хранилище постеров.
type PosterStorage interface {
	// PosterUploadURL генерирует presigned PUT URL для загрузки постера фильма.
	PosterUploadURL(ctx context.Context, movieID uuid.UUID, contentType string, contentLength int64) (*UploadInfo, error)
	// CheckPosterUpload подтверждает загрузку по ключу и возвращает публичный URL
	// (пустая строка, если публичная база не настроена).
	CheckPosterUpload(ctx context.Context, movieID uuid.UUID, key string) (string, error)
}
