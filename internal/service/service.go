// Package service содержит бизнес-логику movie-tracker: жизненный цикл
// аккаунтов (регистрация, вход, смена пароля, federated-вход), выпуск и
// проверку токенов и ownership-scoped CRUD фильмов поверх интерфейсов
// из пакета storage.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасном storage.Storage.
//   - Актор всегда передаётся явным параметром; никакого имплицитного
//     "текущего пользователя" в пакете нет.
//   - Ошибки возвращаются сигнальными значениями и далее маппятся
//     HTTP-слоем на коды ответов (см. комментарии ниже и пакет httperr).
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pribylovaa/go-movie-tracker/internal/cache"
	"github.com/pribylovaa/go-movie-tracker/internal/config"
	"github.com/pribylovaa/go-movie-tracker/internal/models"
	"github.com/pribylovaa/go-movie-tracker/internal/storage"
)

//go:generate mockgen -destination=../../mocks/mock_oauth.go -package=mocks github.com/pribylovaa/go-movie-tracker/internal/service OAuthProvider

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Транспорт: 401. Наружу не различаем "нет такого логина" и "неверный пароль".
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи
	// или отсутствует в хранилище. Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — токен отозван и недействителен независимо от срока.
	// Транспорт: 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrUnauthenticated — операция требует аутентифицированного актора,
	// а его нет. Транспорт: 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUsernameTaken — имя пользователя уже занято. Транспорт: 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken — e-mail уже занят другим аккаунтом. Транспорт: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrNotFound — запись не найдена либо принадлежит другому владельцу;
	// политика сокрытия существования не различает эти случаи. Транспорт: 404.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied — действие запрещено политикой там, где существование
	// цели скрывать не нужно (перечисление аккаунтов). Транспорт: 403.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidArgument — некорректный ввод общего вида. Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRefreshTokenCollision — исчерпаны попытки сгенерировать уникальный
	// refresh-токен. Транспорт: 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")

	// ErrUnimplemented — опциональный коллаборатор (постеры/OAuth) не
	// сконфигурирован. Транспорт: 501.
	ErrUnimplemented = errors.New("not configured")

	// ErrInternal — прочие ошибки хранилищ/инфраструктуры. Транспорт: 500.
	ErrInternal = errors.New("internal error")
)

// ValidationError — структурная ошибка валидации с именем поля.
// Через errors.Is совместима с ErrInvalidArgument, поэтому существующий
// маппинг на 400 работает без специальных веток.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// validationErr — шорткат для ошибок валидации с контекстом операции.
func validationErr(op, field, reason string) error {
	return fmt.Errorf("%s: %w", op, &ValidationError{Field: field, Reason: reason})
}

// OAuthProvider — коллаборатор federated-входа: обменивает authorization code
// на подтверждённую идентичность у стороннего провайдера.
type OAuthProvider interface {
	Exchange(ctx context.Context, code string) (*models.ExternalIdentity, error)
}

// Service описывает бизнес-логику movie-tracker.
type Service struct {
	storage storage.Storage
	cfg     config.AuthConfig
	oauth   OAuthProvider         // может быть nil, если federated-вход выключен
	posters storage.PosterStorage // может быть nil, если постеры выключены
	rcache  cache.RefreshCache    // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{
		storage: st,
		cfg:     cfg,
	}
}

// SetOAuthProvider устанавливает провайдера federated-входа (опционально).
func (s *Service) SetOAuthProvider(p OAuthProvider) {
	s.oauth = p
}

// SetPosterStorage устанавливает объектное хранилище постеров (опционально).
func (s *Service) SetPosterStorage(p storage.PosterStorage) {
	s.posters = p
}

// SetRefreshCache устанавливает кэш refresh-токенов (опционально).
func (s *Service) SetRefreshCache(c cache.RefreshCache) {
	s.rcache = c
}
